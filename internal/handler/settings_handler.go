package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// SettingsHandler exposes the public settings map.
type SettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewSettingsHandler constructs a settings handler.
func NewSettingsHandler(service service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "settings_handler").Logger(),
	}
}

// Register wires public settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	router.Get("", h.getPublic)
}

func (h *SettingsHandler) getPublic(c *fiber.Ctx) error {
	settings, err := h.service.GetPublic(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load public settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load settings")
	}

	return utils.SendSuccess(c, "settings retrieved", settings)
}
