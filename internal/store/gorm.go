package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/procardhq/procard-backend/internal/models"
	"gorm.io/gorm"
)

// GormCardStore is the Postgres-backed CardStore. Duplicate slugs surface as
// ErrDuplicateSlug via GORM's dialect error translation, so the database
// unique index is the source of truth even when a pre-check races.
type GormCardStore struct {
	db *gorm.DB
}

func NewGormCardStore(db *gorm.DB) *GormCardStore {
	return &GormCardStore{db: db}
}

func (s *GormCardStore) scope(filter CardFilter) *gorm.DB {
	q := s.db.Model(&models.Card{})
	if filter.ID != uuid.Nil {
		q = q.Where("id = ?", filter.ID)
	}
	if filter.Owner != uuid.Nil {
		q = q.Where("owner = ?", filter.Owner)
	}
	if filter.Slug != "" {
		q = q.Where("slug = ?", filter.Slug)
	}
	if filter.Enabled != nil {
		q = q.Where("enabled = ?", *filter.Enabled)
	}
	if filter.Removed != nil {
		q = q.Where("removed = ?", *filter.Removed)
	}
	if filter.ExcludeID != uuid.Nil {
		q = q.Where("id <> ?", filter.ExcludeID)
	}
	if filter.LastViewedAfter != nil {
		q = q.Where("(analytics->>'lastViewed')::timestamptz >= ?", *filter.LastViewedAfter)
	}
	return q
}

func (s *GormCardStore) FindOne(filter CardFilter) (*models.Card, error) {
	var card models.Card
	if err := s.scope(filter).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find card: %w", err)
	}
	return &card, nil
}

func (s *GormCardStore) Find(filter CardFilter, sort string, limit, offset int) ([]models.Card, error) {
	q := s.scope(filter)

	switch sort {
	case SortViewsDesc:
		q = q.Order("(analytics->>'totalViews')::bigint DESC")
	default:
		q = q.Order("created_at DESC")
	}

	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var cards []models.Card
	if err := q.Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (s *GormCardStore) Count(filter CardFilter) (int64, error) {
	var count int64
	if err := s.scope(filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

func (s *GormCardStore) Insert(card *models.Card) error {
	if err := s.db.Create(card).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

func (s *GormCardStore) Save(card *models.Card) error {
	if err := s.db.Save(card).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}
