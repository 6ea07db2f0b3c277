package store

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/procardhq/procard-backend/internal/models"
)

// MemoryCardStore is an in-memory CardStore used as a test double. It
// reproduces the Postgres contract, including the slug unique index spanning
// removed rows.
type MemoryCardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]models.Card
}

func NewMemoryCardStore() *MemoryCardStore {
	return &MemoryCardStore{cards: make(map[uuid.UUID]models.Card)}
}

func matches(c *models.Card, f CardFilter) bool {
	if f.ID != uuid.Nil && c.ID != f.ID {
		return false
	}
	if f.Owner != uuid.Nil && c.Owner != f.Owner {
		return false
	}
	if f.Slug != "" && c.Slug != f.Slug {
		return false
	}
	if f.Enabled != nil && c.Enabled != *f.Enabled {
		return false
	}
	if f.Removed != nil && c.Removed != *f.Removed {
		return false
	}
	if f.ExcludeID != uuid.Nil && c.ID == f.ExcludeID {
		return false
	}
	if f.LastViewedAfter != nil {
		if c.Analytics.LastViewed == nil || c.Analytics.LastViewed.Before(*f.LastViewedAfter) {
			return false
		}
	}
	return true
}

func clone(c models.Card) models.Card {
	out := c
	out.Socials = append(models.SocialLinks(nil), c.Socials...)
	out.Analytics.ViewHistory = append([]models.ViewEntry(nil), c.Analytics.ViewHistory...)
	return out
}

func (s *MemoryCardStore) FindOne(filter CardFilter) (*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id := range s.cards {
		c := s.cards[id]
		if matches(&c, filter) {
			out := clone(c)
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryCardStore) Find(filter CardFilter, sortOrder string, limit, offset int) ([]models.Card, error) {
	s.mu.RLock()
	var matched []models.Card
	for id := range s.cards {
		c := s.cards[id]
		if matches(&c, filter) {
			matched = append(matched, clone(c))
		}
	}
	s.mu.RUnlock()

	switch sortOrder {
	case SortViewsDesc:
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].Analytics.TotalViews > matched[j].Analytics.TotalViews
		})
	default:
		sort.Slice(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryCardStore) Count(filter CardFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for id := range s.cards {
		c := s.cards[id]
		if matches(&c, filter) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryCardStore) Insert(card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Unique index semantics: the slug collides with any row, removed or not.
	for _, existing := range s.cards {
		if existing.Slug == card.Slug {
			return ErrDuplicateSlug
		}
	}

	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	now := time.Now()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	card.UpdatedAt = now

	s.cards[card.ID] = clone(*card)
	return nil
}

func (s *MemoryCardStore) Save(card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.cards {
		if existing.Slug == card.Slug && id != card.ID {
			return ErrDuplicateSlug
		}
	}

	card.UpdatedAt = time.Now()
	s.cards[card.ID] = clone(*card)
	return nil
}
