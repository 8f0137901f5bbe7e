package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// CategoryHandler exposes public taxonomy endpoints.
type CategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewCategoryHandler constructs a category handler.
func NewCategoryHandler(service service.CategoryService, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "category_handler").Logger(),
	}
}

// Register wires public category routes.
func (h *CategoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *CategoryHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	// The public site only sees active categories.
	result, err := h.service.List(c.Context(), true, page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list categories")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list categories")
	}

	return utils.SendSuccess(c, "categories retrieved", result)
}

func (h *CategoryHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	category, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		}
		h.logger.Error().Err(err).Uint("category_id", id).Msg("failed to fetch category")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch category")
	}

	return utils.SendSuccess(c, "category retrieved", category)
}
