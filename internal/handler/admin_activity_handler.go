package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// AdminActivityHandler exposes the audit trail, retention cleanup and stats.
type AdminActivityHandler struct {
	service       service.ActivityService
	retentionDays int
	logger        zerolog.Logger
}

// NewAdminActivityHandler constructs the handler. retentionDays is the default
// cleanup threshold when the request omits one.
func NewAdminActivityHandler(service service.ActivityService, retentionDays int, logger zerolog.Logger) *AdminActivityHandler {
	return &AdminActivityHandler{
		service:       service,
		retentionDays: retentionDays,
		logger:        logger.With().Str("component", "admin_activity_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/stats", h.stats)
	router.Post("/cleanup", h.cleanup)
}

func (h *AdminActivityHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	adminID, err := parseQueryInt(c, "adminId")
	if err != nil || adminID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid admin id")
	}
	sinceDays, err := parseQueryInt(c, "sinceDays")
	if err != nil || sinceDays < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid time window")
	}

	req := dto.ActivityListRequest{
		Page:         page,
		PageSize:     pageSize,
		AdminID:      uint(adminID),
		Action:       strings.TrimSpace(c.Query("action")),
		ResourceType: strings.TrimSpace(c.Query("resourceType")),
		SinceDays:    sinceDays,
	}

	result, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list activity log")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters": fiber.Map{
			"action":       req.Action,
			"resourceType": req.ResourceType,
		},
	}

	return utils.OK(c, result.Items, "activity log retrieved", meta)
}

func (h *AdminActivityHandler) stats(c *fiber.Ctx) error {
	windowDays, err := parseQueryInt(c, "windowDays")
	if err != nil || windowDays < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid time window")
	}

	stats, err := h.service.Stats(c.Context(), windowDays)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute activity stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute activity stats")
	}

	return utils.SendSuccess(c, "activity stats retrieved", stats)
}

func (h *AdminActivityHandler) cleanup(c *fiber.Ctx) error {
	payload := dto.ActivityCleanupRequest{OlderThanDays: h.retentionDays}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}
	if payload.OlderThanDays <= 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "cleanup threshold must be positive")
	}

	actor := activityActorFromContext(c)
	result, err := h.service.Cleanup(c.Context(), payload.OlderThanDays, actor)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to clean up activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to clean up activity log")
	}

	return utils.SendSuccess(c, "activity log cleaned up", result)
}
