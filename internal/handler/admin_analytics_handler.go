package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// AdminAnalyticsHandler serves the dashboard summary.
type AdminAnalyticsHandler struct {
	service service.AnalyticsService
	logger  zerolog.Logger
}

// NewAdminAnalyticsHandler constructs the handler.
func NewAdminAnalyticsHandler(service service.AnalyticsService, logger zerolog.Logger) *AdminAnalyticsHandler {
	return &AdminAnalyticsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_analytics_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminAnalyticsHandler) Register(router fiber.Router) {
	router.Get("/summary", h.summary)
}

func (h *AdminAnalyticsHandler) summary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to compute analytics summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute analytics summary")
	}

	return utils.SendSuccess(c, "analytics summary retrieved", summary)
}
