package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// AdminSettingsHandler manages site settings admin endpoints.
type AdminSettingsHandler struct {
	service service.SettingsService
	logger  zerolog.Logger
}

// NewAdminSettingsHandler constructs the handler.
func NewAdminSettingsHandler(service service.SettingsService, logger zerolog.Logger) *AdminSettingsHandler {
	return &AdminSettingsHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_settings_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminSettingsHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:key", h.get)
	router.Put("", h.set)
	router.Delete("/:key", h.delete)
}

func (h *AdminSettingsHandler) list(c *fiber.Ctx) error {
	settings, err := h.service.ListAll(c.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list settings")
	}

	return utils.SendSuccess(c, "settings retrieved", settings)
}

func (h *AdminSettingsHandler) get(c *fiber.Ctx) error {
	key := c.Params("key")

	setting, err := h.service.Get(c.Context(), key)
	if err != nil {
		if errors.Is(err, service.ErrSettingNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "setting not found")
		}
		h.logger.Error().Err(err).Str("key", key).Msg("failed to fetch setting")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch setting")
	}

	return utils.SendSuccess(c, "setting retrieved", setting)
}

func (h *AdminSettingsHandler) set(c *fiber.Ctx) error {
	var payload dto.SettingUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	setting, err := h.service.Set(c.Context(), payload, actor)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Str("key", payload.Key).Msg("failed to store setting")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to store setting")
	}

	return utils.SendSuccess(c, "setting stored", setting)
}

func (h *AdminSettingsHandler) delete(c *fiber.Ctx) error {
	key := c.Params("key")
	actor := activityActorFromContext(c)

	if err := h.service.Delete(c.Context(), key, actor); err != nil {
		if errors.Is(err, service.ErrSettingNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "setting not found")
		}
		h.logger.Error().Err(err).Str("key", key).Msg("failed to delete setting")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete setting")
	}

	return utils.SendSuccess(c, "setting deleted", fiber.Map{"key": key})
}
