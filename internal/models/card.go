package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tier is the subscription level attached to users and inherited by cards.
type Tier string

const (
	TierFree   Tier = "Free"
	TierPro    Tier = "Pro"
	TierAgency Tier = "Agency"
)

func (t Tier) Valid() bool {
	return t == TierFree || t == TierPro || t == TierAgency
}

// ViewHistoryCap bounds the per-card view history. Counters keep incrementing
// once the history is full.
const ViewHistoryCap = 1000

var CardFonts = []string{"Inter", "Roboto", "Poppins", "Montserrat", "Open Sans", "Lato"}

var SocialPlatforms = []string{
	"LinkedIn", "Twitter", "Facebook", "Instagram", "WhatsApp", "Telegram",
	"YouTube", "TikTok", "GitHub", "Behance", "Dribbble", "Custom",
}

type Branding struct {
	LogoURL        string `json:"logoUrl"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	Font           string `json:"font"`
	HidePoweredBy  bool   `json:"hidePoweredBy"`
}

type Content struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Bio        string `json:"bio"`
	Avatar     string `json:"avatar"`
	CoverImage string `json:"coverImage"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

type Coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type Contact struct {
	Phone          string      `json:"phone"`
	Email          string      `json:"email"`
	Website        string      `json:"website"`
	Address        Address     `json:"address"`
	MapCoordinates Coordinates `json:"mapCoordinates"`
}

type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	Order    int    `json:"order"`
}

type SocialLinks []SocialLink

type QRStyle struct {
	ForegroundColor      string `json:"foregroundColor"`
	BackgroundColor      string `json:"backgroundColor"`
	Logo                 string `json:"logo"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel"`
}

type PasswordProtection struct {
	Enabled  bool   `json:"enabled"`
	Password string `json:"password,omitempty"`
}

type Features struct {
	QRStyle            QRStyle            `json:"qrStyle"`
	PasswordProtection PasswordProtection `json:"passwordProtection"`
	HideBranding       bool               `json:"hideBranding"`
	MetaTitle          string             `json:"metaTitle"`
	MetaDescription    string             `json:"metaDescription"`
}

type ViewEntry struct {
	Timestamp time.Time `json:"timestamp"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Country   string    `json:"country"`
	City      string    `json:"city"`
}

type Analytics struct {
	TotalViews   int64       `json:"totalViews"`
	UniqueVisits int64       `json:"uniqueVisits"`
	VcfDownloads int64       `json:"vcfDownloads"`
	LinkClicks   int64       `json:"linkClicks"`
	LastViewed   *time.Time  `json:"lastViewed"`
	ViewHistory  []ViewEntry `json:"viewHistory"`
}

// Card is the canonical digital business card record. Nested documents are
// stored as JSONB columns; the slug carries a store-level unique index that
// covers removed rows too.
type Card struct {
	ID         uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Owner      uuid.UUID   `gorm:"type:uuid;not null;index:idx_cards_owner_state" json:"owner"`
	Removed    bool        `gorm:"default:false;index:idx_cards_owner_state" json:"removed"`
	Enabled    bool        `gorm:"default:true;index:idx_cards_owner_state" json:"enabled"`
	Tier       Tier        `gorm:"size:20;not null;default:'Free';index" json:"tier"`
	TierExpiry *time.Time  `json:"tierExpiry"`
	Slug       string      `gorm:"size:100;not null;uniqueIndex" json:"slug"`
	Branding   Branding    `gorm:"type:jsonb" json:"branding"`
	Content    Content     `gorm:"type:jsonb" json:"content"`
	Contact    Contact     `gorm:"type:jsonb" json:"contact"`
	Socials    SocialLinks `gorm:"type:jsonb" json:"socials"`
	Features   Features    `gorm:"type:jsonb" json:"features"`
	Analytics  Analytics   `gorm:"type:jsonb" json:"analytics"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ApplyDefaults fills zero-valued styling fields with the platform defaults.
func (c *Card) ApplyDefaults() {
	if c.Branding.PrimaryColor == "" {
		c.Branding.PrimaryColor = "#1890ff"
	}
	if c.Branding.SecondaryColor == "" {
		c.Branding.SecondaryColor = "#52c41a"
	}
	if c.Branding.Font == "" {
		c.Branding.Font = "Inter"
	}
	if c.Features.QRStyle.ForegroundColor == "" {
		c.Features.QRStyle.ForegroundColor = "#000000"
	}
	if c.Features.QRStyle.BackgroundColor == "" {
		c.Features.QRStyle.BackgroundColor = "#ffffff"
	}
	if c.Features.QRStyle.ErrorCorrectionLevel == "" {
		c.Features.QRStyle.ErrorCorrectionLevel = "M"
	}
	if !c.Tier.Valid() {
		c.Tier = TierFree
	}
}

// DeriveSEO fills missing SEO metadata from the card content.
func (c *Card) DeriveSEO() {
	if c.Features.MetaTitle == "" {
		title := c.Content.Title
		if title == "" {
			title = "Digital Business Card"
		}
		c.Features.MetaTitle = fmt.Sprintf("%s - %s", c.Content.Name, title)
	}
	if c.Features.MetaDescription == "" {
		if c.Content.Bio != "" {
			c.Features.MetaDescription = c.Content.Bio
		} else {
			c.Features.MetaDescription = "Connect with " + c.Content.Name
		}
	}
}

// PublicURL is the canonical public address of the card.
func (c *Card) PublicURL(baseURL string) string {
	return baseURL + "/v/" + c.Slug
}

func (c *Card) QRCodeURL(baseURL string) string {
	return baseURL + "/api/cards/" + c.Slug + "/qr"
}

func (c *Card) VcfURL(baseURL string) string {
	return baseURL + "/api/cards/" + c.Slug + "/vcf"
}

// Sanitized returns a copy safe for public projection: the stored password
// secret is never included.
func (c *Card) Sanitized() *Card {
	out := *c
	out.Features.PasswordProtection.Password = ""
	return &out
}

func jsonbValue(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonbScan(dest interface{}, value interface{}) error {
	if value == nil {
		return nil
	}
	switch b := value.(type) {
	case []byte:
		return json.Unmarshal(b, dest)
	case string:
		return json.Unmarshal([]byte(b), dest)
	default:
		return errors.New("unsupported jsonb source type")
	}
}

func (b Branding) Value() (driver.Value, error)  { return jsonbValue(b) }
func (b *Branding) Scan(value interface{}) error { return jsonbScan(b, value) }

func (c Content) Value() (driver.Value, error)  { return jsonbValue(c) }
func (c *Content) Scan(value interface{}) error { return jsonbScan(c, value) }

func (c Contact) Value() (driver.Value, error)  { return jsonbValue(c) }
func (c *Contact) Scan(value interface{}) error { return jsonbScan(c, value) }

func (s SocialLinks) Value() (driver.Value, error)  { return jsonbValue(s) }
func (s *SocialLinks) Scan(value interface{}) error { return jsonbScan(s, value) }

func (f Features) Value() (driver.Value, error)  { return jsonbValue(f) }
func (f *Features) Scan(value interface{}) error { return jsonbScan(f, value) }

func (a Analytics) Value() (driver.Value, error)  { return jsonbValue(a) }
func (a *Analytics) Scan(value interface{}) error { return jsonbScan(a, value) }
