package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// AchievementHandler exposes public achievement endpoints.
type AchievementHandler struct {
	service service.AchievementService
	logger  zerolog.Logger
}

// NewAchievementHandler constructs an achievement handler.
func NewAchievementHandler(service service.AchievementService, logger zerolog.Logger) *AchievementHandler {
	return &AchievementHandler{
		service: service,
		logger:  logger.With().Str("component", "achievement_handler").Logger(),
	}
}

// Register wires public achievement routes.
func (h *AchievementHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/stats", h.stats)
	router.Get("/:id", h.get)
}

func (h *AchievementHandler) list(c *fiber.Ctx) error {
	req, err := achievementListRequestFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list achievements")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list achievements")
	}

	return utils.SendSuccess(c, "achievements retrieved", result)
}

func (h *AchievementHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute achievement stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute achievement stats")
	}

	return utils.SendSuccess(c, "achievement stats retrieved", stats)
}

func (h *AchievementHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	achievement, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAchievementNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "achievement not found")
		}
		h.logger.Error().Err(err).Uint("achievement_id", id).Msg("failed to fetch achievement")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch achievement")
	}

	return utils.SendSuccess(c, "achievement retrieved", achievement)
}

func achievementListRequestFromQuery(c *fiber.Ctx) (dto.AchievementListRequest, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.AchievementListRequest{}, err
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return dto.AchievementListRequest{}, err
	}
	featured, err := parseQueryBoolPtr(c, "featured")
	if err != nil {
		return dto.AchievementListRequest{}, err
	}
	categoryID, err := parseQueryUintPtr(c, "categoryId")
	if err != nil {
		return dto.AchievementListRequest{}, err
	}
	from, err := parseQueryDate(c, "from")
	if err != nil {
		return dto.AchievementListRequest{}, err
	}
	to, err := parseQueryDate(c, "to")
	if err != nil {
		return dto.AchievementListRequest{}, err
	}

	return dto.AchievementListRequest{
		Status:       strings.TrimSpace(c.Query("status")),
		Type:         strings.TrimSpace(c.Query("type")),
		AchieverType: strings.TrimSpace(c.Query("achieverType")),
		CategoryID:   categoryID,
		Featured:     featured,
		From:         from,
		To:           to,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}
