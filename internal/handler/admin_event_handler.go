package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// AdminEventHandler manages event admin endpoints.
type AdminEventHandler struct {
	service service.EventService
	logger  zerolog.Logger
}

// NewAdminEventHandler constructs the handler.
func NewAdminEventHandler(service service.EventService, logger zerolog.Logger) *AdminEventHandler {
	return &AdminEventHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_event_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminEventHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
}

func (h *AdminEventHandler) list(c *fiber.Ctx) error {
	req, err := eventListRequestFromQuery(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.AdminList(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list events (admin)")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list events")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters": fiber.Map{
			"status": req.Status,
			"type":   req.Type,
		},
	}

	return utils.OK(c, result.Items, "events retrieved", meta)
}

func (h *AdminEventHandler) get(c *fiber.Ctx) error {
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

func (h *AdminEventHandler) create(c *fiber.Ctx) error {
	var payload dto.EventCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	event, err := h.service.Create(c.Context(), payload, actor)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create event")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "event created", event)
}

func (h *AdminEventHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.EventUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	event, err := h.service.Update(c.Context(), id, payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		default:
			h.logger.Error().Err(err).Uint("event_id", id).Msg("failed to update event")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update event")
		}
	}

	return utils.SendSuccess(c, "event updated", event)
}

func (h *AdminEventHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	actor := activityActorFromContext(c)

	if err := h.service.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		}
		h.logger.Error().Err(err).Uint("event_id", id).Msg("failed to delete event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete event")
	}

	return utils.SendSuccess(c, "event deleted", fiber.Map{"id": id})
}
