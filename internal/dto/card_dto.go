package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/procardhq/procard-backend/internal/models"
)

// CreateCardRequest is the card draft submitted by the owner. Tier is never
// accepted from the body; it is inherited from the authenticated owner.
type CreateCardRequest struct {
	Slug     string              `json:"slug"`
	Branding *models.Branding    `json:"branding"`
	Content  models.Content      `json:"content"`
	Contact  *models.Contact     `json:"contact"`
	Socials  *models.SocialLinks `json:"socials"`
	Features *models.Features    `json:"features"`
}

// UpdateCardRequest carries a shallow-merge patch: a present top-level field
// replaces the stored value wholesale, nested documents included.
type UpdateCardRequest struct {
	Slug     *string             `json:"slug"`
	Enabled  *bool               `json:"enabled"`
	Branding *models.Branding    `json:"branding"`
	Content  *models.Content     `json:"content"`
	Contact  *models.Contact     `json:"contact"`
	Socials  *models.SocialLinks `json:"socials"`
	Features *models.Features    `json:"features"`
}

// FeaturesResponse exposes card features without the password secret.
type FeaturesResponse struct {
	QRStyle           models.QRStyle `json:"qrStyle"`
	PasswordProtected bool           `json:"passwordProtected"`
	HideBranding      bool           `json:"hideBranding"`
	MetaTitle         string         `json:"metaTitle"`
	MetaDescription   string         `json:"metaDescription"`
}

type CardResponse struct {
	ID         uuid.UUID          `json:"id"`
	Owner      uuid.UUID          `json:"owner"`
	Slug       string             `json:"slug"`
	Tier       models.Tier        `json:"tier"`
	TierExpiry *time.Time         `json:"tierExpiry,omitempty"`
	Enabled    bool               `json:"enabled"`
	Branding   models.Branding    `json:"branding"`
	Content    models.Content     `json:"content"`
	Contact    models.Contact     `json:"contact"`
	Socials    models.SocialLinks `json:"socials"`
	Features   FeaturesResponse   `json:"features"`
	Analytics  models.Analytics   `json:"analytics"`
	PublicURL  string             `json:"publicUrl"`
	QRCodeURL  string             `json:"qrCodeUrl"`
	VcfURL     string             `json:"vcfUrl"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// NewCardResponse projects a card for clients. The stored password secret is
// structurally absent from the response type.
func NewCardResponse(card *models.Card, baseURL string) CardResponse {
	return CardResponse{
		ID:         card.ID,
		Owner:      card.Owner,
		Slug:       card.Slug,
		Tier:       card.Tier,
		TierExpiry: card.TierExpiry,
		Enabled:    card.Enabled,
		Branding:   card.Branding,
		Content:    card.Content,
		Contact:    card.Contact,
		Socials:    card.Socials,
		Features: FeaturesResponse{
			QRStyle:           card.Features.QRStyle,
			PasswordProtected: card.Features.PasswordProtection.Enabled,
			HideBranding:      card.Features.HideBranding,
			MetaTitle:         card.Features.MetaTitle,
			MetaDescription:   card.Features.MetaDescription,
		},
		Analytics: card.Analytics,
		PublicURL: card.PublicURL(baseURL),
		QRCodeURL: card.QRCodeURL(baseURL),
		VcfURL:    card.VcfURL(baseURL),
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
}

type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
	Limit int            `json:"limit"`
}

// TierLimitResponse carries the limit and current count when a create is
// blocked by the subscription tier.
type TierLimitResponse struct {
	Error        bool   `json:"error"`
	Message      string `json:"message"`
	TierLimit    int    `json:"tierLimit"`
	CurrentCount int64  `json:"currentCount"`
}

// PasswordRequiredResponse is returned when a protected card is fetched
// without the correct secret.
type PasswordRequiredResponse struct {
	Error            bool   `json:"error"`
	Message          string `json:"message"`
	PasswordRequired bool   `json:"passwordRequired"`
}

type SlugAvailabilityResponse struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

type TrackRequest struct {
	Type    string `json:"type"`
	LinkURL string `json:"linkUrl,omitempty"`
}

type BulkEnabledRequest struct {
	IDs     []uuid.UUID `json:"ids"`
	Enabled bool        `json:"enabled"`
}

type BulkEnabledResponse struct {
	Updated int  `json:"updated"`
	Enabled bool `json:"enabled"`
}

type QRDataURLResponse struct {
	DataURL   string `json:"dataUrl"`
	PublicURL string `json:"publicUrl"`
}
