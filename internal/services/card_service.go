package services

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/procardhq/procard-backend/internal/dto"
	"github.com/procardhq/procard-backend/internal/entitlement"
	"github.com/procardhq/procard-backend/internal/models"
	"github.com/procardhq/procard-backend/internal/store"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	hexPattern   = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
)

// CardService owns the card lifecycle: nonexistent -> active -> disabled ->
// removed, with removed terminal. All entitlement checks happen here before
// any mutation reaches the store.
type CardService struct {
	store     store.CardStore
	analytics *AnalyticsService
}

func NewCardService(cardStore store.CardStore, analytics *AnalyticsService) *CardService {
	return &CardService{store: cardStore, analytics: analytics}
}

// Create builds a card from the owner's draft. The tier is inherited from
// the owner, never from the request body.
func (s *CardService) Create(owner *models.User, req *dto.CreateCardRequest) (*models.Card, error) {
	tier := owner.CurrentTier()

	count, err := s.store.Count(store.CardFilter{Owner: owner.ID, Removed: store.Bool(false)})
	if err != nil {
		return nil, err
	}
	limit := entitlement.CardLimit(tier)
	if limit != entitlement.Unlimited && count >= int64(limit) {
		return nil, &TierLimitError{Tier: tier, Limit: limit, Count: count}
	}

	slug := normalizeSlug(req.Slug)
	if err := validateSlug(slug); err != nil {
		return nil, err
	}

	available, err := s.IsSlugAvailable(slug, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrSlugTaken
	}

	card := &models.Card{
		ID:         uuid.New(),
		Owner:      owner.ID,
		Tier:       tier,
		TierExpiry: owner.TierExpiry,
		Slug:       slug,
		Enabled:    true,
		Content:    req.Content,
	}
	if req.Branding != nil {
		card.Branding = *req.Branding
	}
	if req.Contact != nil {
		card.Contact = *req.Contact
	}
	if req.Socials != nil {
		card.Socials = *req.Socials
	}
	if req.Features != nil {
		card.Features = *req.Features
	}

	card.ApplyDefaults()
	if err := s.applyTierGates(card, tier); err != nil {
		return nil, err
	}
	if err := validateCard(card); err != nil {
		return nil, err
	}
	card.DeriveSEO()

	if err := s.store.Insert(card); err != nil {
		// The pre-check can lose a race; the unique index still holds and the
		// outcome is the same slug conflict.
		if errors.Is(err, store.ErrDuplicateSlug) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return card, nil
}

// Update applies a shallow-merge patch: present top-level fields replace the
// stored value wholesale, nested documents included.
func (s *CardService) Update(ownerID, id uuid.UUID, patch *dto.UpdateCardRequest) (*models.Card, error) {
	card, err := s.findOwned(ownerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil {
		slug := normalizeSlug(*patch.Slug)
		if slug != card.Slug {
			if err := validateSlug(slug); err != nil {
				return nil, err
			}
			available, err := s.IsSlugAvailable(slug, card.ID)
			if err != nil {
				return nil, err
			}
			if !available {
				return nil, ErrSlugTaken
			}
			card.Slug = slug
		}
	}

	if patch.Enabled != nil {
		card.Enabled = *patch.Enabled
	}
	if patch.Branding != nil {
		card.Branding = *patch.Branding
	}
	if patch.Content != nil {
		card.Content = *patch.Content
	}
	if patch.Contact != nil {
		card.Contact = *patch.Contact
	}
	if patch.Socials != nil {
		card.Socials = *patch.Socials
	}
	if patch.Features != nil {
		card.Features = *patch.Features
	}

	card.ApplyDefaults()
	if err := s.applyTierGates(card, card.Tier); err != nil {
		return nil, err
	}
	if err := validateCard(card); err != nil {
		return nil, err
	}
	card.DeriveSEO()

	if err := s.store.Save(card); err != nil {
		if errors.Is(err, store.ErrDuplicateSlug) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return card, nil
}

// Remove soft-deletes the card. Removed cards are always disabled and there
// is no resurrection path.
func (s *CardService) Remove(ownerID, id uuid.UUID) (*models.Card, error) {
	card, err := s.findOwned(ownerID, id)
	if err != nil {
		return nil, err
	}

	card.Removed = true
	card.Enabled = false

	if err := s.store.Save(card); err != nil {
		return nil, err
	}
	return card, nil
}

// GetOwned returns the owner's card and counts the read as a view, matching
// the public view tracking.
func (s *CardService) GetOwned(ownerID, id uuid.UUID) (*models.Card, error) {
	card, err := s.findOwned(ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.analytics.Increment(card, MetricTotalViews, nil); err != nil {
		slog.Error("owner view tracking failed", "card_id", card.ID.String(), "error", err)
	}
	return card, nil
}

// List returns the owner's live cards, newest first, with the total count
// for page derivation.
func (s *CardService) List(ownerID uuid.UUID, page, limit int) ([]models.Card, int64, error) {
	filter := store.CardFilter{Owner: ownerID, Removed: store.Bool(false)}

	total, err := s.store.Count(filter)
	if err != nil {
		return nil, 0, err
	}

	cards, err := s.store.Find(filter, store.SortCreatedDesc, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// FetchPublic resolves an enabled card by slug for an anonymous visitor.
// The view is tracked without blocking the response and the returned
// projection never carries the password secret.
func (s *CardService) FetchPublic(slug, password string, details *models.ViewEntry) (*models.Card, error) {
	card, err := s.findPublic(slug)
	if err != nil {
		return nil, err
	}

	if card.Features.PasswordProtection.Enabled {
		if password == "" || password != card.Features.PasswordProtection.Password {
			return nil, ErrPasswordRequired
		}
	}

	// Copy before the tracker goroutine takes ownership of card.
	out := card.Sanitized()
	s.analytics.TrackAsync(card, MetricTotalViews, details)
	return out, nil
}

// GetBySlug resolves an enabled card for the export endpoints. Password
// protection does not gate QR or vCard downloads.
func (s *CardService) GetBySlug(slug string) (*models.Card, error) {
	return s.findPublic(slug)
}

// TrackDownload counts a vCard download without blocking the caller.
func (s *CardService) TrackDownload(card *models.Card, details *models.ViewEntry) {
	s.analytics.TrackAsync(card, MetricVcfDownloads, details)
}

// Track records a visitor-reported event against a public card. Accumulator
// failures are soft no-ops: the card was served, so the event is dropped and
// only logged.
func (s *CardService) Track(slug, eventType string, details *models.ViewEntry) error {
	card, err := s.findPublic(slug)
	if err != nil {
		return err
	}

	var metric string
	switch eventType {
	case "view":
		metric = MetricTotalViews
	case "linkClick":
		metric = MetricLinkClicks
	default:
		return fmt.Errorf("%w: invalid analytics type %q", ErrValidation, eventType)
	}

	if err := s.analytics.Increment(card, metric, details); err != nil {
		slog.Error("analytics tracking failed", "slug", slug, "metric", metric, "error", err)
	}
	return nil
}

// IsSlugAvailable reports whether no live card holds the slug, excluding the
// record identified by excludeID when given.
func (s *CardService) IsSlugAvailable(slug string, excludeID uuid.UUID) (bool, error) {
	_, err := s.store.FindOne(store.CardFilter{
		Slug:      slug,
		Removed:   store.Bool(false),
		ExcludeID: excludeID,
	})
	if errors.Is(err, store.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Trending returns the most viewed enabled cards seen within the last week.
func (s *CardService) Trending(limit int) ([]models.Card, error) {
	cutoff := time.Now().AddDate(0, 0, -7)
	return s.store.Find(store.CardFilter{
		Enabled:         store.Bool(true),
		Removed:         store.Bool(false),
		LastViewedAfter: &cutoff,
	}, store.SortViewsDesc, limit, 0)
}

// BulkSetEnabled publishes or unpublishes several of the owner's cards at
// once. Gated on the Agency bulk_management capability.
func (s *CardService) BulkSetEnabled(owner *models.User, ids []uuid.UUID, enabled bool) (int, error) {
	if !entitlement.HasCapability(owner.CurrentTier(), "bulk_management") {
		return 0, fmt.Errorf("%w: bulk management requires the Agency tier", ErrNotEntitled)
	}

	updated := 0
	for _, id := range ids {
		card, err := s.findOwned(owner.ID, id)
		if err != nil {
			if errors.Is(err, ErrCardNotFound) {
				continue
			}
			return updated, err
		}
		card.Enabled = enabled
		if err := s.store.Save(card); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *CardService) findOwned(ownerID, id uuid.UUID) (*models.Card, error) {
	card, err := s.store.FindOne(store.CardFilter{ID: id, Owner: ownerID, Removed: store.Bool(false)})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

func (s *CardService) findPublic(slug string) (*models.Card, error) {
	card, err := s.store.FindOne(store.CardFilter{
		Slug:    slug,
		Enabled: store.Bool(true),
		Removed: store.Bool(false),
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// applyTierGates enforces feature gating. Over-limit social lists are
// rejected; gated boolean features are cleared rather than rejected so a
// downgraded owner's stale payloads still save.
func (s *CardService) applyTierGates(card *models.Card, tier models.Tier) error {
	if max := entitlement.MaxSocialLinks(tier); max != entitlement.Unlimited && len(card.Socials) > max {
		return fmt.Errorf("%w: %s tier allows at most %d social links", ErrValidation, tier, max)
	}
	if !entitlement.PasswordProtectionAllowed(tier) {
		card.Features.PasswordProtection = models.PasswordProtection{}
	}
	if !entitlement.PoweredByRemovalAllowed(tier) {
		card.Branding.HidePoweredBy = false
	}
	if !entitlement.BrandingRemovalAllowed(tier) {
		card.Features.HideBranding = false
	}
	return nil
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

func validateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("%w: slug is required for the custom URL", ErrValidation)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: slug may only contain lowercase letters, digits and hyphens", ErrValidation)
	}
	return nil
}

func validateCard(card *models.Card) error {
	if strings.TrimSpace(card.Content.Name) == "" {
		return fmt.Errorf("%w: display name is required", ErrValidation)
	}
	if len(card.Content.Name) > 100 {
		return fmt.Errorf("%w: display name exceeds 100 characters", ErrValidation)
	}
	if len(card.Content.Title) > 150 {
		return fmt.Errorf("%w: title exceeds 150 characters", ErrValidation)
	}
	if len(card.Content.Company) > 100 {
		return fmt.Errorf("%w: company exceeds 100 characters", ErrValidation)
	}
	if len(card.Content.Bio) > 500 {
		return fmt.Errorf("%w: bio exceeds 500 characters", ErrValidation)
	}

	if card.Contact.Email != "" && !emailPattern.MatchString(card.Contact.Email) {
		return fmt.Errorf("%w: invalid contact email", ErrValidation)
	}
	if lat := card.Contact.MapCoordinates.Latitude; lat != nil && (*lat < -90 || *lat > 90) {
		return fmt.Errorf("%w: latitude out of range", ErrValidation)
	}
	if lon := card.Contact.MapCoordinates.Longitude; lon != nil && (*lon < -180 || *lon > 180) {
		return fmt.Errorf("%w: longitude out of range", ErrValidation)
	}

	for _, c := range []string{
		card.Branding.PrimaryColor, card.Branding.SecondaryColor,
		card.Features.QRStyle.ForegroundColor, card.Features.QRStyle.BackgroundColor,
	} {
		if c != "" && !hexPattern.MatchString(c) {
			return fmt.Errorf("%w: invalid hex color %q", ErrValidation, c)
		}
	}

	if card.Branding.Font != "" && !contains(models.CardFonts, card.Branding.Font) {
		return fmt.Errorf("%w: invalid font %q", ErrValidation, card.Branding.Font)
	}

	switch card.Features.QRStyle.ErrorCorrectionLevel {
	case "", "L", "M", "Q", "H":
	default:
		return fmt.Errorf("%w: invalid QR error correction level %q", ErrValidation, card.Features.QRStyle.ErrorCorrectionLevel)
	}

	for _, social := range card.Socials {
		if !contains(models.SocialPlatforms, social.Platform) {
			return fmt.Errorf("%w: invalid social platform %q", ErrValidation, social.Platform)
		}
		if strings.TrimSpace(social.URL) == "" {
			return fmt.Errorf("%w: social link URL is required", ErrValidation)
		}
	}
	return nil
}

func contains(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
