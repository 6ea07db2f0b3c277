// Package store is the persistence boundary for card records. The engine
// talks only to CardStore; slug uniqueness is the one invariant enforced at
// this layer rather than by pre-checks.
package store

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/procardhq/procard-backend/internal/models"
)

var (
	ErrNotFound      = errors.New("card not found")
	ErrDuplicateSlug = errors.New("slug already exists")
)

// Sort orders supported by Find.
const (
	SortCreatedDesc = "created_desc"
	SortViewsDesc   = "views_desc"
)

// CardFilter describes the record selections the engine needs. Zero values
// mean "not filtered"; Enabled/Removed use pointers so false is expressible.
type CardFilter struct {
	ID              uuid.UUID
	Owner           uuid.UUID
	Slug            string
	Enabled         *bool
	Removed         *bool
	ExcludeID       uuid.UUID
	LastViewedAfter *time.Time
}

type CardStore interface {
	// FindOne returns the single card matching the filter or ErrNotFound.
	FindOne(filter CardFilter) (*models.Card, error)

	// Find returns matching cards in the given sort order with offset/limit
	// pagination. limit <= 0 means no limit.
	Find(filter CardFilter, sort string, limit, offset int) ([]models.Card, error)

	Count(filter CardFilter) (int64, error)

	// Insert persists a new card, returning ErrDuplicateSlug when the slug
	// collides with any existing row, removed or not.
	Insert(card *models.Card) error

	// Save updates an existing card in place.
	Save(card *models.Card) error
}

// Bool is a filter literal helper.
func Bool(b bool) *bool { return &b }
