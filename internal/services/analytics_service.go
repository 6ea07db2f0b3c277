package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/procardhq/procard-backend/internal/models"
	"github.com/procardhq/procard-backend/internal/store"
)

// Analytics metrics.
const (
	MetricTotalViews   = "totalViews"
	MetricUniqueVisits = "uniqueVisits"
	MetricVcfDownloads = "vcfDownloads"
	MetricLinkClicks   = "linkClicks"
)

// AnalyticsService is the bounded accumulator attached to each card. View
// history stops growing at models.ViewHistoryCap entries while the counters
// keep incrementing.
type AnalyticsService struct {
	store store.CardStore
}

func NewAnalyticsService(cardStore store.CardStore) *AnalyticsService {
	return &AnalyticsService{store: cardStore}
}

// Increment bumps the named counter by one and persists the card. LastViewed
// is refreshed for every metric, not just views; this mirrors the upstream
// behavior and is kept for compatibility.
func (s *AnalyticsService) Increment(card *models.Card, metric string, details *models.ViewEntry) error {
	now := time.Now()

	switch metric {
	case MetricTotalViews:
		card.Analytics.TotalViews++
	case MetricUniqueVisits:
		card.Analytics.UniqueVisits++
	case MetricVcfDownloads:
		card.Analytics.VcfDownloads++
	case MetricLinkClicks:
		card.Analytics.LinkClicks++
	default:
		return fmt.Errorf("%w: unknown analytics metric %q", ErrValidation, metric)
	}

	card.Analytics.LastViewed = &now

	if metric == MetricTotalViews && len(card.Analytics.ViewHistory) < models.ViewHistoryCap {
		entry := models.ViewEntry{}
		if details != nil {
			entry = *details
		}
		if entry.Timestamp.IsZero() {
			entry.Timestamp = now
		}
		card.Analytics.ViewHistory = append(card.Analytics.ViewHistory, entry)
	}

	if err := s.store.Save(card); err != nil {
		return fmt.Errorf("failed to persist analytics: %w", err)
	}
	return nil
}

// TrackAsync fires an increment without blocking the caller. Failures are
// logged and discarded so analytics can never downgrade a successful read.
func (s *AnalyticsService) TrackAsync(card *models.Card, metric string, details *models.ViewEntry) {
	go func() {
		if err := s.Increment(card, metric, details); err != nil {
			slog.Error("analytics tracking failed",
				"card_id", card.ID.String(), "slug", card.Slug, "metric", metric, "error", err)
		}
	}()
}
