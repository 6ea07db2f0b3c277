package export_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procardhq/procard-backend/internal/export"
	"github.com/procardhq/procard-backend/internal/models"
)

func TestVCardMinimal(t *testing.T) {
	card := &models.Card{
		Slug:    "ada",
		Content: models.Content{Name: "Ada Lovelace"},
		Contact: models.Contact{Email: "ada@example.com"},
	}

	expected := "BEGIN:VCARD\n" +
		"VERSION:3.0\n" +
		"FN:Ada Lovelace\n" +
		"EMAIL:ada@example.com\n" +
		"END:VCARD"
	assert.Equal(t, expected, export.VCard(card))
}

func TestVCardFull(t *testing.T) {
	card := &models.Card{
		Slug: "ada",
		Content: models.Content{
			Name:    "Ada Lovelace",
			Title:   "Analyst",
			Company: "Analytical Engines Ltd",
			Bio:     "First programmer",
		},
		Contact: models.Contact{
			Phone:   "+44 20 1234 5678",
			Email:   "ada@example.com",
			Website: "https://ada.example.com",
			Address: models.Address{
				Street:  "12 St James Square",
				City:    "London",
				State:   "",
				Country: "UK",
				ZipCode: "SW1Y 4JH",
			},
		},
	}

	got := export.VCard(card)
	lines := strings.Split(got, "\n")
	require.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:Ada Lovelace",
		"TITLE:Analyst",
		"ORG:Analytical Engines Ltd",
		"TEL:+44 20 1234 5678",
		"EMAIL:ada@example.com",
		"URL:https://ada.example.com",
		"ADR:;;12 St James Square;London;;SW1Y 4JH;UK",
		"NOTE:First programmer",
		"END:VCARD",
	}, lines)
}

func TestVCardOmitsEmptyFields(t *testing.T) {
	card := &models.Card{Content: models.Content{Name: "Solo Name"}}

	got := export.VCard(card)
	assert.NotContains(t, got, "TITLE")
	assert.NotContains(t, got, "ORG")
	assert.NotContains(t, got, "TEL")
	assert.NotContains(t, got, "EMAIL")
	assert.NotContains(t, got, "ADR")
	assert.NotContains(t, got, "NOTE")
	assert.False(t, strings.HasSuffix(got, "\n"), "no trailing newline")
}

func TestVCardAddressGatedOnStreet(t *testing.T) {
	// City alone does not produce an ADR line; street is the gate.
	card := &models.Card{
		Content: models.Content{Name: "N"},
		Contact: models.Contact{Address: models.Address{City: "London"}},
	}
	assert.NotContains(t, export.VCard(card), "ADR")
}

func TestVCardAdvanced(t *testing.T) {
	lat, lon := 51.5074, -0.1278
	card := &models.Card{
		Slug: "ada",
		Tier: models.TierPro,
		Content: models.Content{
			Name:   "Ada Lovelace",
			Title:  "Analyst",
			Avatar: "https://cdn.example.com/ada.png",
			Bio:    "First programmer",
		},
		Branding: models.Branding{LogoURL: "https://cdn.example.com/logo.png"},
		Contact: models.Contact{
			Phone:          "+44 20 1234 5678",
			Email:          "ada@example.com",
			Address:        models.Address{Street: "12 St James Square", City: "London", Country: "UK"},
			MapCoordinates: models.Coordinates{Latitude: &lat, Longitude: &lon},
		},
		Socials: models.SocialLinks{
			{Platform: "LinkedIn", URL: "https://linkedin.com/in/ada"},
			{Platform: "GitHub", URL: "https://github.com/ada"},
		},
	}

	got := export.VCardAdvanced(card, "https://cards.example.com")
	lines := strings.Split(got, "\n")
	require.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"FN:Ada Lovelace",
		"TITLE:Analyst",
		"TEL;TYPE=WORK,VOICE:+44 20 1234 5678",
		"EMAIL;TYPE=WORK:ada@example.com",
		"ADR;TYPE=WORK:;;12 St James Square;London;;;UK",
		"GEO:51.5074;-0.1278",
		"PHOTO;VALUE=URI:https://cdn.example.com/ada.png",
		"LOGO;VALUE=URI:https://cdn.example.com/logo.png",
		"URL;TYPE=LinkedIn:https://linkedin.com/in/ada",
		"URL;TYPE=GitHub:https://github.com/ada",
		"NOTE:First programmer",
		"X-PROCARD-URL:https://cards.example.com/v/ada",
		"X-PROCARD-TIER:Pro",
		"END:VCARD",
	}, lines)
}

func TestVCardAdvancedGeoRequiresBothCoordinates(t *testing.T) {
	lat := 51.5074
	card := &models.Card{
		Content: models.Content{Name: "N"},
		Contact: models.Contact{MapCoordinates: models.Coordinates{Latitude: &lat}},
	}
	assert.NotContains(t, export.VCardAdvanced(card, "https://x.test"), "GEO:")
}

func TestVCardAdvancedSocialsKeepStoredOrder(t *testing.T) {
	card := &models.Card{
		Content: models.Content{Name: "N"},
		Socials: models.SocialLinks{
			{Platform: "TikTok", URL: "https://tiktok.com/@n"},
			{Platform: "Behance", URL: "https://behance.net/n"},
			{Platform: "Twitter", URL: "https://twitter.com/n"},
		},
	}

	got := export.VCardAdvanced(card, "https://x.test")
	tiktok := strings.Index(got, "URL;TYPE=TikTok")
	behance := strings.Index(got, "URL;TYPE=Behance")
	twitter := strings.Index(got, "URL;TYPE=Twitter")
	require.True(t, tiktok >= 0 && behance >= 0 && twitter >= 0)
	assert.Less(t, tiktok, behance)
	assert.Less(t, behance, twitter)
}
