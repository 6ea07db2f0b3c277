package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the card owner. Tier and TierExpiry are maintained by the
// subscription service and inherited by cards at creation time.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email      string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Name       string         `gorm:"size:100" json:"name"`
	Role       string         `gorm:"size:20;default:'user'" json:"role"`
	Tier       Tier           `gorm:"size:20;not null;default:'Free'" json:"tier"`
	TierExpiry *time.Time     `json:"tier_expiry,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// CurrentTier resolves the effective tier: an unset tier defaults to Free and
// an expired paid tier falls back to Free.
func (u *User) CurrentTier() Tier {
	if !u.Tier.Valid() {
		return TierFree
	}
	if u.Tier != TierFree && u.TierExpiry != nil && time.Now().After(*u.TierExpiry) {
		return TierFree
	}
	return u.Tier
}
