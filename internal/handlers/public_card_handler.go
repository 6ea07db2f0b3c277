package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/procardhq/procard-backend/internal/dto"
	"github.com/procardhq/procard-backend/internal/export"
	"github.com/procardhq/procard-backend/internal/models"
	"github.com/procardhq/procard-backend/internal/services"
)

// PublicCardHandler serves the anonymous visitor surface: profile view, QR
// code, vCard downloads and event tracking. No authentication.
type PublicCardHandler struct {
	cardService *services.CardService
	qr          *export.QRGenerator
	baseURL     string
}

func NewPublicCardHandler(cardService *services.CardService, qr *export.QRGenerator, baseURL string) *PublicCardHandler {
	return &PublicCardHandler{cardService: cardService, qr: qr, baseURL: baseURL}
}

func visitorDetails(c *fiber.Ctx) *models.ViewEntry {
	return &models.ViewEntry{
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
}

// ViewBySlug handles GET /public/v/:slug. Password-protected cards require
// ?password= to match the stored secret exactly.
func (h *PublicCardHandler) ViewBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	card, err := h.cardService.FetchPublic(slug, c.Query("password"), visitorDetails(c))
	if err != nil {
		return cardError(c, err)
	}

	return c.JSON(dto.NewCardResponse(card, h.baseURL))
}

// GenerateQR handles GET /public/v/:slug/qr?format=png|svg&size=.
func (h *PublicCardHandler) GenerateQR(c *fiber.Ctx) error {
	slug := c.Params("slug")

	card, err := h.cardService.GetBySlug(slug)
	if err != nil {
		return cardError(c, err)
	}

	size := c.QueryInt("size", export.DefaultQRSize)
	if size < 64 || size > 2048 {
		size = export.DefaultQRSize
	}

	if c.Query("format") == "svg" {
		svg, err := h.qr.SVG(card, size)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to generate QR code",
			})
		}
		c.Set("Content-Type", "image/svg+xml")
		c.Set("Cache-Control", "public, max-age=86400")
		return c.SendString(svg)
	}

	png, err := h.qr.PNG(card, size)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to generate QR code",
		})
	}

	c.Set("Content-Type", "image/png")
	c.Set("Cache-Control", "public, max-age=86400")
	c.Set("Content-Disposition", `inline; filename="`+slug+`-qr.png"`)
	c.Set("Content-Length", strconv.Itoa(len(png)))
	return c.Send(png)
}

// GenerateVcf handles GET /public/v/:slug/vcf, the one-click contact save.
func (h *PublicCardHandler) GenerateVcf(c *fiber.Ctx) error {
	slug := c.Params("slug")

	card, err := h.cardService.GetBySlug(slug)
	if err != nil {
		return cardError(c, err)
	}

	vcf := export.VCard(card)
	h.cardService.TrackDownload(card, visitorDetails(c))

	c.Set("Content-Type", "text/vcard; charset=utf-8")
	c.Set("Content-Disposition", `attachment; filename="`+slug+`.vcf"`)
	c.Set("Cache-Control", "no-cache")
	return c.SendString(vcf)
}

// GenerateVcfAdvanced handles GET /public/v/:slug/vcf/advanced with geo,
// photo, logo, social links and the X-PROCARD extension lines.
func (h *PublicCardHandler) GenerateVcfAdvanced(c *fiber.Ctx) error {
	slug := c.Params("slug")

	card, err := h.cardService.GetBySlug(slug)
	if err != nil {
		return cardError(c, err)
	}

	vcf := export.VCardAdvanced(card, h.baseURL)
	h.cardService.TrackDownload(card, visitorDetails(c))

	c.Set("Content-Type", "text/vcard; charset=utf-8")
	c.Set("Content-Disposition", `attachment; filename="`+slug+`.vcf"`)
	return c.SendString(vcf)
}

// Track handles POST /public/v/:slug/track with body {type: view|linkClick}.
func (h *PublicCardHandler) Track(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var req dto.TrackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.cardService.Track(slug, req.Type, visitorDetails(c)); err != nil {
		return cardError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Analytics tracked"})
}
