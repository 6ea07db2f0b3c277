package export

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"strings"

	"github.com/procardhq/procard-backend/internal/models"
	"github.com/skip2/go-qrcode"
)

// Literal QR style defaults applied when the card's qrStyle is unset.
const (
	DefaultQRForeground = "#000000"
	DefaultQRBackground = "#ffffff"
	DefaultQRLevel      = "M"
	DefaultQRSize       = 300
)

// QRGenerator renders a card's public URL as a QR code. The base URL is
// injected at construction time; the payload is always {baseURL}/v/{slug}
// regardless of output encoding.
type QRGenerator struct {
	baseURL string
}

func NewQRGenerator(baseURL string) *QRGenerator {
	return &QRGenerator{baseURL: baseURL}
}

// Payload returns the exact bytes encoded into the QR code.
func (g *QRGenerator) Payload(card *models.Card) string {
	return card.PublicURL(g.baseURL)
}

func (g *QRGenerator) build(card *models.Card) (*qrcode.QRCode, error) {
	q, err := qrcode.New(g.Payload(card), recoveryLevel(card.Features.QRStyle.ErrorCorrectionLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to build QR code: %w", err)
	}

	fg, err := parseHexColor(card.Features.QRStyle.ForegroundColor, DefaultQRForeground)
	if err != nil {
		return nil, err
	}
	bg, err := parseHexColor(card.Features.QRStyle.BackgroundColor, DefaultQRBackground)
	if err != nil {
		return nil, err
	}
	q.ForegroundColor = fg
	q.BackgroundColor = bg
	return q, nil
}

// PNG renders the raster encoding at the given pixel size.
func (g *QRGenerator) PNG(card *models.Card, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	q, err := g.build(card)
	if err != nil {
		return nil, err
	}
	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR png: %w", err)
	}
	return png, nil
}

// SVG renders the vector encoding. It is built from the same module bitmap
// as PNG, so both encodings carry identical payload bytes for a given style.
func (g *QRGenerator) SVG(card *models.Card, size int) (string, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	q, err := g.build(card)
	if err != nil {
		return "", err
	}

	bitmap := q.Bitmap()
	modules := len(bitmap)

	fg := card.Features.QRStyle.ForegroundColor
	if fg == "" {
		fg = DefaultQRForeground
	}
	bg := card.Features.QRStyle.BackgroundColor
	if bg == "" {
		bg = DefaultQRBackground
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		size, size, modules, modules)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="%s"/>`, modules, modules, bg)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="1" height="1" fill="%s"/>`, x, y, fg)
			}
		}
	}
	b.WriteString(`</svg>`)
	return b.String(), nil
}

// DataURL renders a base64 PNG data URL for dashboard preview embedding.
func (g *QRGenerator) DataURL(card *models.Card) (string, error) {
	png, err := g.PNG(card, 400)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch level {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

func parseHexColor(s, fallback string) (color.Color, error) {
	if s == "" {
		s = fallback
	}
	if !strings.HasPrefix(s, "#") {
		return nil, fmt.Errorf("invalid hex color %q", s)
	}
	hex := s[1:]

	var r, g, b uint8
	switch len(hex) {
	case 3:
		n, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b)
		if err != nil || n != 3 {
			return nil, fmt.Errorf("invalid hex color %q", s)
		}
		r *= 17
		g *= 17
		b *= 17
	case 6:
		n, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
		if err != nil || n != 3 {
			return nil, fmt.Errorf("invalid hex color %q", s)
		}
	default:
		return nil, fmt.Errorf("invalid hex color %q", s)
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
