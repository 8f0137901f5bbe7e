package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// AdminCategoryHandler manages taxonomy admin endpoints.
type AdminCategoryHandler struct {
	service service.CategoryService
	logger  zerolog.Logger
}

// NewAdminCategoryHandler constructs the handler.
func NewAdminCategoryHandler(service service.CategoryService, logger zerolog.Logger) *AdminCategoryHandler {
	return &AdminCategoryHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_category_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminCategoryHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminCategoryHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.List(c.Context(), false, page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list categories (admin)")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list categories")
	}

	return utils.OK(c, result.Items, "categories retrieved", fiber.Map{"pagination": result.Pagination})
}

func (h *AdminCategoryHandler) create(c *fiber.Ctx) error {
	var payload dto.CategoryCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	category, err := h.service.Create(c.Context(), payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategorySlugTaken):
			return utils.SendError(c, fiber.StatusConflict, "category slug already in use")
		default:
			h.logger.Error().Err(err).Msg("failed to create category")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create category")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "category created", category)
}

func (h *AdminCategoryHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.CategoryUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	category, err := h.service.Update(c.Context(), id, payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCategoryNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		default:
			h.logger.Error().Err(err).Uint("category_id", id).Msg("failed to update category")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update category")
		}
	}

	return utils.SendSuccess(c, "category updated", category)
}

func (h *AdminCategoryHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	actor := activityActorFromContext(c)

	if err := h.service.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "category not found")
		}
		h.logger.Error().Err(err).Uint("category_id", id).Msg("failed to delete category")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete category")
	}

	return utils.SendSuccess(c, "category deleted", fiber.Map{"id": id})
}
