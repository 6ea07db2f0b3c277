package services

import (
	"errors"
	"fmt"

	"github.com/procardhq/procard-backend/internal/models"
)

var (
	// ErrCardNotFound covers absent, foreign-owned and removed cards alike so
	// the caller cannot distinguish the three causes.
	ErrCardNotFound = errors.New("card not found")

	ErrSlugTaken        = errors.New("slug already taken")
	ErrPasswordRequired = errors.New("this card is password protected")
	ErrValidation       = errors.New("validation failed")
	ErrNotEntitled      = errors.New("tier does not allow this operation")
)

// TierLimitError rejects a create blocked by the subscription card limit.
type TierLimitError struct {
	Tier  models.Tier
	Limit int
	Count int64
}

func (e *TierLimitError) Error() string {
	return fmt.Sprintf("card limit reached for %s tier (%d of %d). Upgrade to create more cards", e.Tier, e.Count, e.Limit)
}
