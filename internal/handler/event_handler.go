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

// EventHandler exposes public event endpoints.
type EventHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

// NewEventHandler constructs an event handler.
func NewEventHandler(service service.EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger.With().Str("component", "event_handler").Logger(),
	}
}

// Register wires public event routes.
func (h *EventHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

func (h *EventHandler) list(c *fiber.Ctx) error {
	req, err := eventListRequestFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list events")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list events")
	}

	return utils.SendSuccess(c, "events retrieved", result)
}

func (h *EventHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	event, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		}
		h.logger.Error().Err(err).Uint("event_id", id).Msg("failed to fetch event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch event")
	}

	return utils.SendSuccess(c, "event retrieved", event)
}

func eventListRequestFromQuery(c *fiber.Ctx) (dto.EventListRequest, error) {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return dto.EventListRequest{}, err
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return dto.EventListRequest{}, err
	}
	featured, err := parseQueryBoolPtr(c, "featured")
	if err != nil {
		return dto.EventListRequest{}, err
	}
	categoryID, err := parseQueryUintPtr(c, "categoryId")
	if err != nil {
		return dto.EventListRequest{}, err
	}
	from, err := parseQueryDate(c, "from")
	if err != nil {
		return dto.EventListRequest{}, err
	}
	to, err := parseQueryDate(c, "to")
	if err != nil {
		return dto.EventListRequest{}, err
	}

	return dto.EventListRequest{
		Status:     strings.TrimSpace(c.Query("status")),
		Type:       strings.TrimSpace(c.Query("type")),
		CategoryID: categoryID,
		Featured:   featured,
		From:       from,
		To:         to,
		Upcoming:   c.QueryBool("upcoming"),
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
