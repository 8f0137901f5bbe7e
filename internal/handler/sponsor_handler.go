package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// SponsorHandler exposes public sponsor endpoints.
type SponsorHandler struct {
	service service.SponsorService
	logger  zerolog.Logger
}

// NewSponsorHandler constructs a sponsor handler.
func NewSponsorHandler(service service.SponsorService, logger zerolog.Logger) *SponsorHandler {
	return &SponsorHandler{
		service: service,
		logger:  logger.With().Str("component", "sponsor_handler").Logger(),
	}
}

// Register wires public sponsor routes. eventRouter serves the per-event
// sponsor listing under the events resource.
func (h *SponsorHandler) Register(router fiber.Router, eventRouter fiber.Router) {
	router.Get("", h.list)
	eventRouter.Get("/:id/sponsors", h.listForEvent)
}

func (h *SponsorHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	result, err := h.service.ListActive(c.Context(), strings.TrimSpace(c.Query("tier")), page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list sponsors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sponsors")
	}

	return utils.SendSuccess(c, "sponsors retrieved", result)
}

func (h *SponsorHandler) listForEvent(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	links, err := h.service.ListForEvent(c.Context(), eventID)
	if err != nil {
		h.logger.Error().Err(err).Uint("event_id", eventID).Msg("failed to list event sponsors")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list event sponsors")
	}

	return utils.SendSuccess(c, "event sponsors retrieved", links)
}
