package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/procardhq/procard-backend/internal/dto"
	"github.com/procardhq/procard-backend/internal/export"
	"github.com/procardhq/procard-backend/internal/middleware"
	"github.com/procardhq/procard-backend/internal/services"
)

// CardHandler serves the authenticated owner's card operations. All decision
// logic lives in the card service; this layer only parses, dispatches and
// maps error kinds onto responses.
type CardHandler struct {
	cardService *services.CardService
	authService *services.AuthService
	qr          *export.QRGenerator
	baseURL     string
}

func NewCardHandler(cardService *services.CardService, authService *services.AuthService, qr *export.QRGenerator, baseURL string) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		authService: authService,
		qr:          qr,
		baseURL:     baseURL,
	}
}

func (h *CardHandler) owner(c *fiber.Ctx) (uuid.UUID, error) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return uuid.Nil, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}
	return userID, nil
}

// CreateCard handles POST /cards.
func (h *CardHandler) CreateCard(c *fiber.Ctx) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	card, err := h.cardService.Create(user, &req)
	if err != nil {
		return cardError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewCardResponse(card, h.baseURL))
}

// ListCards handles GET /cards with offset pagination.
func (h *CardHandler) ListCards(c *fiber.Ctx) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	cards, total, err := h.cardService.List(userID, page, limit)
	if err != nil {
		return cardError(c, err)
	}

	responses := make([]dto.CardResponse, len(cards))
	for i := range cards {
		responses[i] = dto.NewCardResponse(&cards[i], h.baseURL)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))
	return c.JSON(dto.CardListResponse{
		Cards: responses,
		Total: total,
		Page:  page,
		Pages: pages,
		Limit: limit,
	})
}

// GetCard handles GET /cards/:id.
func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid card id",
		})
	}

	card, err := h.cardService.GetOwned(userID, id)
	if err != nil {
		return cardError(c, err)
	}

	return c.JSON(dto.NewCardResponse(card, h.baseURL))
}

// UpdateCard handles PATCH /cards/:id.
func (h *CardHandler) UpdateCard(c *fiber.Ctx) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid card id",
		})
	}

	var patch dto.UpdateCardRequest
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	card, err := h.cardService.Update(userID, id, &patch)
	if err != nil {
		return cardError(c, err)
	}

	return c.JSON(dto.NewCardResponse(card, h.baseURL))
}

// DeleteCard handles DELETE /cards/:id (soft delete).
func (h *CardHandler) DeleteCard(c *fiber.Ctx) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid card id",
		})
	}

	card, err := h.cardService.Remove(userID, id)
	if err != nil {
		return cardError(c, err)
	}

	return c.JSON(dto.NewCardResponse(card, h.baseURL))
}

// SlugAvailability handles GET /cards/slug-availability?slug=&exclude_id=.
func (h *CardHandler) SlugAvailability(c *fiber.Ctx) error {
	if _, err := h.owner(c); err != nil {
		return err
	}

	slug := c.Query("slug")
	if slug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "slug query parameter is required",
		})
	}

	excludeID := uuid.Nil
	if raw := c.Query("exclude_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid exclude_id",
			})
		}
		excludeID = parsed
	}

	available, err := h.cardService.IsSlugAvailable(slug, excludeID)
	if err != nil {
		return cardError(c, err)
	}

	return c.JSON(dto.SlugAvailabilityResponse{Slug: slug, Available: available})
}

// BulkEnabled handles POST /cards/bulk/enabled (Agency tier).
func (h *CardHandler) BulkEnabled(c *fiber.Ctx) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.BulkEnabledRequest
	if err := c.BodyParser(&req); err != nil || len(req.IDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Card ids are required",
		})
	}

	updated, err := h.cardService.BulkSetEnabled(user, req.IDs, req.Enabled)
	if err != nil {
		return cardError(c, err)
	}

	return c.JSON(dto.BulkEnabledResponse{Updated: updated, Enabled: req.Enabled})
}

// Trending handles GET /cards/trending?limit=.
func (h *CardHandler) Trending(c *fiber.Ctx) error {
	if _, err := h.owner(c); err != nil {
		return err
	}

	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}

	cards, err := h.cardService.Trending(limit)
	if err != nil {
		return cardError(c, err)
	}

	responses := make([]dto.CardResponse, len(cards))
	for i := range cards {
		responses[i] = dto.NewCardResponse(&cards[i], h.baseURL)
	}
	return c.JSON(fiber.Map{"cards": responses})
}

// QRDataURL handles GET /cards/:id/qr/dataurl for dashboard previews.
func (h *CardHandler) QRDataURL(c *fiber.Ctx) error {
	userID, err := h.owner(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid card id",
		})
	}

	card, err := h.cardService.GetOwned(userID, id)
	if err != nil {
		return cardError(c, err)
	}

	dataURL, err := h.qr.DataURL(card)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to generate QR code",
		})
	}

	return c.JSON(dto.QRDataURLResponse{
		DataURL:   dataURL,
		PublicURL: card.PublicURL(h.baseURL),
	})
}

// cardError maps service error kinds onto responses.
func cardError(c *fiber.Ctx, err error) error {
	var tierErr *services.TierLimitError
	switch {
	case errors.As(err, &tierErr):
		return c.Status(fiber.StatusForbidden).JSON(dto.TierLimitResponse{
			Error:        true,
			Message:      tierErr.Error(),
			TierLimit:    tierErr.Limit,
			CurrentCount: tierErr.Count,
		})
	case errors.Is(err, services.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrSlugTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: "This URL is already taken. Please choose a different slug",
		})
	case errors.Is(err, services.ErrCardNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Card not found",
		})
	case errors.Is(err, services.ErrPasswordRequired):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.PasswordRequiredResponse{
			Error:            true,
			Message:          "This card is password protected",
			PasswordRequired: true,
		})
	case errors.Is(err, services.ErrNotEntitled):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}
}
