package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// AdminAchievementHandler manages achievement admin endpoints.
type AdminAchievementHandler struct {
	service service.AchievementService
	logger  zerolog.Logger
}

// NewAdminAchievementHandler constructs the handler.
func NewAdminAchievementHandler(service service.AchievementService, logger zerolog.Logger) *AdminAchievementHandler {
	return &AdminAchievementHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_achievement_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminAchievementHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminAchievementHandler) list(c *fiber.Ctx) error {
	req, err := achievementListRequestFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.AdminList(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list achievements (admin)")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list achievements")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters": fiber.Map{
			"status":       req.Status,
			"type":         req.Type,
			"achieverType": req.AchieverType,
		},
	}

	return utils.OK(c, result.Items, "achievements retrieved", meta)
}

func (h *AdminAchievementHandler) create(c *fiber.Ctx) error {
	var payload dto.AchievementCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	achievement, err := h.service.Create(c.Context(), payload, actor)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create achievement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create achievement")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "achievement created", achievement)
}

func (h *AdminAchievementHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.AchievementUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	achievement, err := h.service.Update(c.Context(), id, payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrAchievementNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "achievement not found")
		default:
			h.logger.Error().Err(err).Uint("achievement_id", id).Msg("failed to update achievement")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update achievement")
		}
	}

	return utils.SendSuccess(c, "achievement updated", achievement)
}

func (h *AdminAchievementHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	actor := activityActorFromContext(c)

	if err := h.service.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, service.ErrAchievementNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "achievement not found")
		}
		h.logger.Error().Err(err).Uint("achievement_id", id).Msg("failed to delete achievement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete achievement")
	}

	return utils.SendSuccess(c, "achievement deleted", fiber.Map{"id": id})
}
