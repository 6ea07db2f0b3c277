package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procardhq/procard-backend/internal/dto"
	"github.com/procardhq/procard-backend/internal/models"
	"github.com/procardhq/procard-backend/internal/services"
	"github.com/procardhq/procard-backend/internal/store"
)

func newCardService() (*store.MemoryCardStore, *services.CardService) {
	memStore := store.NewMemoryCardStore()
	analytics := services.NewAnalyticsService(memStore)
	return memStore, services.NewCardService(memStore, analytics)
}

func newUser(tier models.Tier) *models.User {
	return &models.User{ID: uuid.New(), Email: "owner@example.com", Tier: tier}
}

func draft(slug, name string) *dto.CreateCardRequest {
	return &dto.CreateCardRequest{
		Slug:    slug,
		Content: models.Content{Name: name},
	}
}

func TestCreateCard(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada Lovelace"))
	require.NoError(t, err)

	assert.Equal(t, owner.ID, card.Owner)
	assert.Equal(t, models.TierFree, card.Tier)
	assert.Equal(t, "ada", card.Slug)
	assert.True(t, card.Enabled)
	assert.False(t, card.Removed)

	// Styling defaults
	assert.Equal(t, "#1890ff", card.Branding.PrimaryColor)
	assert.Equal(t, "#52c41a", card.Branding.SecondaryColor)
	assert.Equal(t, "Inter", card.Branding.Font)
	assert.Equal(t, "M", card.Features.QRStyle.ErrorCorrectionLevel)
}

func TestCreateCardNormalizesSlug(t *testing.T) {
	_, svc := newCardService()

	card, err := svc.Create(newUser(models.TierFree), draft("  Ada-1  ", "Ada"))
	require.NoError(t, err)
	assert.Equal(t, "ada-1", card.Slug)
}

func TestCreateCardSlugValidation(t *testing.T) {
	tests := []struct {
		name string
		slug string
	}{
		{name: "empty slug", slug: ""},
		{name: "spaces inside", slug: "my card"},
		{name: "underscore", slug: "my_card"},
		{name: "unicode", slug: "café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newCardService()
			_, err := svc.Create(newUser(models.TierFree), draft(tt.slug, "Ada"))
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestCreateCardTierLimit(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	_, err := svc.Create(owner, draft("first", "Ada"))
	require.NoError(t, err)

	_, err = svc.Create(owner, draft("second", "Ada"))
	var limitErr *services.TierLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, models.TierFree, limitErr.Tier)
	assert.Equal(t, 1, limitErr.Limit)
	assert.Equal(t, int64(1), limitErr.Count)
}

func TestCreateCardAgencyUnlimited(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierAgency)

	for i := 0; i < 15; i++ {
		_, err := svc.Create(owner, draft("card-"+uuid.NewString(), "Ada"))
		require.NoError(t, err)
	}
}

func TestCreateCardExpiredTierFallsBackToFree(t *testing.T) {
	_, svc := newCardService()
	expired := time.Now().Add(-time.Hour)
	owner := &models.User{ID: uuid.New(), Tier: models.TierPro, TierExpiry: &expired}

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, card.Tier)

	_, err = svc.Create(owner, draft("second", "Ada"))
	var limitErr *services.TierLimitError
	assert.ErrorAs(t, err, &limitErr)
}

func TestCreateCardSlugConflictAcrossOwners(t *testing.T) {
	_, svc := newCardService()

	_, err := svc.Create(newUser(models.TierFree), draft("shared", "First"))
	require.NoError(t, err)

	_, err = svc.Create(newUser(models.TierFree), draft("shared", "Second"))
	assert.ErrorIs(t, err, services.ErrSlugTaken)
}

func TestRemovedCardStillBlocksSlug(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierPro)

	card, err := svc.Create(owner, draft("held", "Ada"))
	require.NoError(t, err)
	_, err = svc.Remove(owner.ID, card.ID)
	require.NoError(t, err)

	// The removed row no longer counts toward the limit but its slug is
	// still held by the unique index.
	_, err = svc.Create(owner, draft("held", "Ada"))
	assert.ErrorIs(t, err, services.ErrSlugTaken)

	_, err = svc.Create(owner, draft("fresh", "Ada"))
	assert.NoError(t, err)
}

func TestCreateCardSocialCapOnFreeTier(t *testing.T) {
	socials := models.SocialLinks{
		{Platform: "LinkedIn", URL: "https://linkedin.com/in/a"},
		{Platform: "Twitter", URL: "https://twitter.com/a"},
		{Platform: "GitHub", URL: "https://github.com/a"},
		{Platform: "Instagram", URL: "https://instagram.com/a"},
		{Platform: "YouTube", URL: "https://youtube.com/@a"},
		{Platform: "TikTok", URL: "https://tiktok.com/@a"},
	}

	_, svc := newCardService()
	req := draft("ada", "Ada")
	req.Socials = &socials
	_, err := svc.Create(newUser(models.TierFree), req)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, svc = newCardService()
	req = draft("ada", "Ada")
	req.Socials = &socials
	_, err = svc.Create(newUser(models.TierPro), req)
	assert.NoError(t, err)
}

func TestCreateCardInvalidSocialPlatform(t *testing.T) {
	_, svc := newCardService()
	req := draft("ada", "Ada")
	req.Socials = &models.SocialLinks{{Platform: "MySpace", URL: "https://myspace.com/a"}}

	_, err := svc.Create(newUser(models.TierFree), req)
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestTierGatesClearFeaturesSilently(t *testing.T) {
	_, svc := newCardService()

	req := draft("free-card", "Ada")
	req.Features = &models.Features{
		PasswordProtection: models.PasswordProtection{Enabled: true, Password: "secret"},
		HideBranding:       true,
	}
	req.Branding = &models.Branding{HidePoweredBy: true}

	card, err := svc.Create(newUser(models.TierFree), req)
	require.NoError(t, err)
	assert.False(t, card.Features.PasswordProtection.Enabled)
	assert.Empty(t, card.Features.PasswordProtection.Password)
	assert.False(t, card.Features.HideBranding)
	assert.False(t, card.Branding.HidePoweredBy)
}

func TestTierGatesProKeepsPasswordNotBranding(t *testing.T) {
	_, svc := newCardService()

	req := draft("pro-card", "Ada")
	req.Features = &models.Features{
		PasswordProtection: models.PasswordProtection{Enabled: true, Password: "secret"},
		HideBranding:       true,
	}
	req.Branding = &models.Branding{HidePoweredBy: true}

	card, err := svc.Create(newUser(models.TierPro), req)
	require.NoError(t, err)
	assert.True(t, card.Features.PasswordProtection.Enabled)
	assert.True(t, card.Branding.HidePoweredBy)
	assert.False(t, card.Features.HideBranding, "hideBranding requires Agency")
}

func TestSEODerivation(t *testing.T) {
	_, svc := newCardService()

	req := draft("ada", "Ada Lovelace")
	card, err := svc.Create(newUser(models.TierFree), req)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace - Digital Business Card", card.Features.MetaTitle)
	assert.Equal(t, "Connect with Ada Lovelace", card.Features.MetaDescription)

	_, svc = newCardService()
	req = draft("grace", "Grace Hopper")
	req.Content.Title = "Rear Admiral"
	req.Content.Bio = "Compiler pioneer"
	card, err = svc.Create(newUser(models.TierFree), req)
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper - Rear Admiral", card.Features.MetaTitle)
	assert.Equal(t, "Compiler pioneer", card.Features.MetaDescription)
}

func TestSEOKeepsExplicitValues(t *testing.T) {
	_, svc := newCardService()

	req := draft("ada", "Ada")
	req.Features = &models.Features{MetaTitle: "Custom Title", MetaDescription: "Custom description"}
	card, err := svc.Create(newUser(models.TierFree), req)
	require.NoError(t, err)
	assert.Equal(t, "Custom Title", card.Features.MetaTitle)
	assert.Equal(t, "Custom description", card.Features.MetaDescription)
}

func TestUpdateCardShallowMerge(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	req := draft("ada", "Ada")
	req.Contact = &models.Contact{Phone: "+441234", Email: "ada@example.com"}
	card, err := svc.Create(owner, req)
	require.NoError(t, err)

	// A present nested document replaces the stored one wholesale.
	patch := &dto.UpdateCardRequest{Contact: &models.Contact{Phone: "+449999"}}
	updated, err := svc.Update(owner.ID, card.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "+449999", updated.Contact.Phone)
	assert.Empty(t, updated.Contact.Email, "absent fields inside a patched document are cleared")
	assert.Equal(t, "Ada", updated.Content.Name, "unpatched documents are untouched")
}

func TestUpdateCardSlugChange(t *testing.T) {
	memStore, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("old-slug", "Ada"))
	require.NoError(t, err)

	newSlug := "new-slug"
	updated, err := svc.Update(owner.ID, card.ID, &dto.UpdateCardRequest{Slug: &newSlug})
	require.NoError(t, err)
	assert.Equal(t, "new-slug", updated.Slug)

	_, err = memStore.FindOne(store.CardFilter{Slug: "old-slug"})
	assert.ErrorIs(t, err, store.ErrNotFound, "old slug is released")
}

func TestUpdateCardSlugConflictLeavesCardUnchanged(t *testing.T) {
	memStore, svc := newCardService()
	owner := newUser(models.TierPro)

	_, err := svc.Create(owner, draft("taken", "First"))
	require.NoError(t, err)
	card, err := svc.Create(owner, draft("mine", "Second"))
	require.NoError(t, err)

	taken := "taken"
	_, err = svc.Update(owner.ID, card.ID, &dto.UpdateCardRequest{Slug: &taken})
	assert.ErrorIs(t, err, services.ErrSlugTaken)

	stored, err := memStore.FindOne(store.CardFilter{ID: card.ID})
	require.NoError(t, err)
	assert.Equal(t, "mine", stored.Slug)
}

func TestUpdateCardSameSlugIsNoConflict(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	same := "ada"
	updated, err := svc.Update(owner.ID, card.ID, &dto.UpdateCardRequest{Slug: &same})
	require.NoError(t, err)
	assert.Equal(t, "ada", updated.Slug)
}

func TestUpdateCardForeignOwner(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	enabled := false
	_, err = svc.Update(uuid.New(), card.ID, &dto.UpdateCardRequest{Enabled: &enabled})
	assert.ErrorIs(t, err, services.ErrCardNotFound)
}

func TestRemoveCard(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	removed, err := svc.Remove(owner.ID, card.ID)
	require.NoError(t, err)
	assert.True(t, removed.Removed)
	assert.False(t, removed.Enabled, "removal always disables")

	// Removed cards vanish from every owner and public read path.
	_, err = svc.GetOwned(owner.ID, card.ID)
	assert.ErrorIs(t, err, services.ErrCardNotFound)
	_, err = svc.FetchPublic("ada", "", nil)
	assert.ErrorIs(t, err, services.ErrCardNotFound)

	cards, total, err := svc.List(owner.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.Zero(t, total)

	// Removal is terminal.
	_, err = svc.Remove(owner.ID, card.ID)
	assert.ErrorIs(t, err, services.ErrCardNotFound)
}

func TestGetOwnedCountsView(t *testing.T) {
	memStore, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	_, err = svc.GetOwned(owner.ID, card.ID)
	require.NoError(t, err)
	got, err := svc.GetOwned(owner.ID, card.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Analytics.TotalViews)

	stored, err := memStore.FindOne(store.CardFilter{ID: card.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Analytics.TotalViews)
	require.NotNil(t, stored.Analytics.LastViewed)
}

func TestListPagination(t *testing.T) {
	memStore, svc := newCardService()
	owner := newUser(models.TierPro)
	now := time.Now()

	for i, slug := range []string{"oldest", "middle", "newest"} {
		card := &models.Card{
			ID:        uuid.New(),
			Owner:     owner.ID,
			Slug:      slug,
			Enabled:   true,
			Tier:      models.TierPro,
			Content:   models.Content{Name: "Ada"},
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, memStore.Insert(card))
	}

	cards, total, err := svc.List(owner.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, cards, 2)
	assert.Equal(t, "newest", cards[0].Slug)
	assert.Equal(t, "middle", cards[1].Slug)

	cards, _, err = svc.List(owner.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "oldest", cards[0].Slug)
}

func TestFetchPublic(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	_, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	card, err := svc.FetchPublic("ada", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "ada", card.Slug)

	_, err = svc.FetchPublic("missing", "", nil)
	assert.ErrorIs(t, err, services.ErrCardNotFound)
}

func TestFetchPublicDisabledCard(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	disabled := false
	_, err = svc.Update(owner.ID, card.ID, &dto.UpdateCardRequest{Enabled: &disabled})
	require.NoError(t, err)

	_, err = svc.FetchPublic("ada", "", nil)
	assert.ErrorIs(t, err, services.ErrCardNotFound)
}

func TestFetchPublicPasswordGate(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierPro)

	req := draft("locked", "Ada")
	req.Features = &models.Features{
		PasswordProtection: models.PasswordProtection{Enabled: true, Password: "open-sesame"},
	}
	_, err := svc.Create(owner, req)
	require.NoError(t, err)

	_, err = svc.FetchPublic("locked", "", nil)
	assert.ErrorIs(t, err, services.ErrPasswordRequired)

	_, err = svc.FetchPublic("locked", "wrong", nil)
	assert.ErrorIs(t, err, services.ErrPasswordRequired)

	card, err := svc.FetchPublic("locked", "open-sesame", nil)
	require.NoError(t, err)
	assert.Empty(t, card.Features.PasswordProtection.Password, "secret never leaves the service")
	assert.True(t, card.Features.PasswordProtection.Enabled)
}

func TestTrack(t *testing.T) {
	memStore, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	require.NoError(t, svc.Track("ada", "view", &models.ViewEntry{IPAddress: "203.0.113.9"}))
	require.NoError(t, svc.Track("ada", "linkClick", nil))

	stored, err := memStore.FindOne(store.CardFilter{ID: card.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Analytics.TotalViews)
	assert.Equal(t, int64(1), stored.Analytics.LinkClicks)
	require.Len(t, stored.Analytics.ViewHistory, 1)
	assert.Equal(t, "203.0.113.9", stored.Analytics.ViewHistory[0].IPAddress)

	err = svc.Track("ada", "teleport", nil)
	assert.ErrorIs(t, err, services.ErrValidation)

	err = svc.Track("missing", "view", nil)
	assert.ErrorIs(t, err, services.ErrCardNotFound)
}

func TestIsSlugAvailable(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierFree)

	card, err := svc.Create(owner, draft("ada", "Ada"))
	require.NoError(t, err)

	available, err := svc.IsSlugAvailable("ada", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.IsSlugAvailable("ada", card.ID)
	require.NoError(t, err)
	assert.True(t, available, "a card does not conflict with itself")

	available, err = svc.IsSlugAvailable("unclaimed", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestTrending(t *testing.T) {
	memStore, svc := newCardService()
	owner := newUser(models.TierAgency)
	recent := time.Now().Add(-time.Hour)
	stale := time.Now().AddDate(0, 0, -10)

	seed := func(slug string, views int64, lastViewed *time.Time, enabled bool) {
		require.NoError(t, memStore.Insert(&models.Card{
			ID:      uuid.New(),
			Owner:   owner.ID,
			Slug:    slug,
			Enabled: enabled,
			Content: models.Content{Name: "N"},
			Analytics: models.Analytics{
				TotalViews: views,
				LastViewed: lastViewed,
			},
		}))
	}

	seed("hot", 500, &recent, true)
	seed("warm", 50, &recent, true)
	seed("stale", 9000, &stale, true)
	seed("hidden", 700, &recent, false)
	seed("never-viewed", 0, nil, true)

	cards, err := svc.Trending(10)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "hot", cards[0].Slug)
	assert.Equal(t, "warm", cards[1].Slug)
}

func TestBulkSetEnabled(t *testing.T) {
	_, svc := newCardService()
	owner := newUser(models.TierAgency)

	first, err := svc.Create(owner, draft("first", "Ada"))
	require.NoError(t, err)
	second, err := svc.Create(owner, draft("second", "Ada"))
	require.NoError(t, err)

	updated, err := svc.BulkSetEnabled(owner, []uuid.UUID{first.ID, second.ID, uuid.New()}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, updated, "missing ids are skipped")

	got, err := svc.GetOwned(owner.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)
}

func TestBulkSetEnabledRequiresAgency(t *testing.T) {
	_, svc := newCardService()
	pro := newUser(models.TierPro)

	card, err := svc.Create(pro, draft("card", "Ada"))
	require.NoError(t, err)

	_, err = svc.BulkSetEnabled(pro, []uuid.UUID{card.ID}, false)
	assert.ErrorIs(t, err, services.ErrNotEntitled)
}
