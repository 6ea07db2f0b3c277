// Package export holds the stateless card transforms: vCard text and QR
// code images. Output is deterministic for a given card so downloads can be
// cached and golden-tested.
package export

import (
	"fmt"
	"strings"

	"github.com/procardhq/procard-backend/internal/models"
)

// VCard emits the baseline vCard 3.0 serialization. Empty fields are omitted
// entirely, never emitted blank.
func VCard(card *models.Card) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\nVERSION:3.0\n")
	fmt.Fprintf(&b, "FN:%s\n", card.Content.Name)

	if card.Content.Title != "" {
		fmt.Fprintf(&b, "TITLE:%s\n", card.Content.Title)
	}
	if card.Content.Company != "" {
		fmt.Fprintf(&b, "ORG:%s\n", card.Content.Company)
	}
	if card.Contact.Phone != "" {
		fmt.Fprintf(&b, "TEL:%s\n", card.Contact.Phone)
	}
	if card.Contact.Email != "" {
		fmt.Fprintf(&b, "EMAIL:%s\n", card.Contact.Email)
	}
	if card.Contact.Website != "" {
		fmt.Fprintf(&b, "URL:%s\n", card.Contact.Website)
	}

	if addr := card.Contact.Address; addr.Street != "" {
		fmt.Fprintf(&b, "ADR:;;%s;%s;%s;%s;%s\n",
			addr.Street, addr.City, addr.State, addr.ZipCode, addr.Country)
	}

	if card.Content.Bio != "" {
		fmt.Fprintf(&b, "NOTE:%s\n", card.Content.Bio)
	}

	b.WriteString("END:VCARD")
	return b.String()
}

// VCardAdvanced emits the extended serialization: work-typed contact fields,
// geo coordinates, photo/logo URIs, one URL line per social link in stored
// order, and the X-PROCARD extension lines.
func VCardAdvanced(card *models.Card, baseURL string) string {
	var b strings.Builder
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")

	fmt.Fprintf(&b, "FN:%s\n", card.Content.Name)
	if card.Content.Title != "" {
		fmt.Fprintf(&b, "TITLE:%s\n", card.Content.Title)
	}
	if card.Content.Company != "" {
		fmt.Fprintf(&b, "ORG:%s\n", card.Content.Company)
	}

	if card.Contact.Phone != "" {
		fmt.Fprintf(&b, "TEL;TYPE=WORK,VOICE:%s\n", card.Contact.Phone)
	}
	if card.Contact.Email != "" {
		fmt.Fprintf(&b, "EMAIL;TYPE=WORK:%s\n", card.Contact.Email)
	}
	if card.Contact.Website != "" {
		fmt.Fprintf(&b, "URL:%s\n", card.Contact.Website)
	}

	if addr := card.Contact.Address; addr.Street != "" {
		fmt.Fprintf(&b, "ADR;TYPE=WORK:;;%s;%s;%s;%s;%s\n",
			addr.Street, addr.City, addr.State, addr.ZipCode, addr.Country)
	}

	if coords := card.Contact.MapCoordinates; coords.Latitude != nil && coords.Longitude != nil {
		fmt.Fprintf(&b, "GEO:%v;%v\n", *coords.Latitude, *coords.Longitude)
	}

	if card.Content.Avatar != "" {
		fmt.Fprintf(&b, "PHOTO;VALUE=URI:%s\n", card.Content.Avatar)
	}
	if card.Branding.LogoURL != "" {
		fmt.Fprintf(&b, "LOGO;VALUE=URI:%s\n", card.Branding.LogoURL)
	}

	for _, social := range card.Socials {
		fmt.Fprintf(&b, "URL;TYPE=%s:%s\n", social.Platform, social.URL)
	}

	if card.Content.Bio != "" {
		fmt.Fprintf(&b, "NOTE:%s\n", card.Content.Bio)
	}

	fmt.Fprintf(&b, "X-PROCARD-URL:%s\n", card.PublicURL(baseURL))
	fmt.Fprintf(&b, "X-PROCARD-TIER:%s\n", card.Tier)

	b.WriteString("END:VCARD")
	return b.String()
}
