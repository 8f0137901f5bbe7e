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

// AdminSponsorHandler manages sponsor admin endpoints including event links.
type AdminSponsorHandler struct {
	service service.SponsorService
	logger  zerolog.Logger
}

// NewAdminSponsorHandler constructs the handler.
func NewAdminSponsorHandler(service service.SponsorService, logger zerolog.Logger) *AdminSponsorHandler {
	return &AdminSponsorHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_sponsor_handler").Logger(),
	}
}

// Register attaches sponsor CRUD routes; RegisterEventLinks attaches the
// event-sponsor link routes under the admin events resource.
func (h *AdminSponsorHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.delete)
	router.Patch("/links/:linkId", h.updateLink)
	router.Delete("/links/:linkId", h.unlink)
}

// RegisterEventLinks wires link creation under the events resource.
func (h *AdminSponsorHandler) RegisterEventLinks(eventRouter fiber.Router) {
	eventRouter.Post("/:id/sponsors", h.link)
}

func (h *AdminSponsorHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}

	req := dto.SponsorListRequest{
		Status:   strings.TrimSpace(c.Query("status")),
		Tier:     strings.TrimSpace(c.Query("tier")),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.service.AdminList(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list sponsors (admin)")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list sponsors")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters":    fiber.Map{"status": req.Status, "tier": req.Tier},
	}

	return utils.OK(c, result.Items, "sponsors retrieved", meta)
}

func (h *AdminSponsorHandler) create(c *fiber.Ctx) error {
	var payload dto.SponsorCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	actor := activityActorFromContext(c)
	sponsor, err := h.service.Create(c.Context(), payload, actor)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to create sponsor")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to create sponsor")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "sponsor created", sponsor)
}

func (h *AdminSponsorHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.SponsorUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	sponsor, err := h.service.Update(c.Context(), id, payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSponsorNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "sponsor not found")
		default:
			h.logger.Error().Err(err).Uint("sponsor_id", id).Msg("failed to update sponsor")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update sponsor")
		}
	}

	return utils.SendSuccess(c, "sponsor updated", sponsor)
}

func (h *AdminSponsorHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	actor := activityActorFromContext(c)

	if err := h.service.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, service.ErrSponsorNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "sponsor not found")
		}
		h.logger.Error().Err(err).Uint("sponsor_id", id).Msg("failed to delete sponsor")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete sponsor")
	}

	return utils.SendSuccess(c, "sponsor deleted", fiber.Map{"id": id})
}

func (h *AdminSponsorHandler) link(c *fiber.Ctx) error {
	eventID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.EventSponsorLinkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	link, err := h.service.LinkToEvent(c.Context(), eventID, payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event not found")
		case errors.Is(err, service.ErrSponsorNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "sponsor not found")
		default:
			h.logger.Error().Err(err).Uint("event_id", eventID).Msg("failed to link sponsor to event")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to link sponsor to event")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "sponsor linked to event", link)
}

func (h *AdminSponsorHandler) updateLink(c *fiber.Ctx) error {
	linkID, err := parseUintParam(c, "linkId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.EventSponsorLinkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	link, err := h.service.UpdateLink(c.Context(), linkID, payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrEventSponsorNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "event sponsor link not found")
		default:
			h.logger.Error().Err(err).Uint("link_id", linkID).Msg("failed to update event sponsor link")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update event sponsor link")
		}
	}

	return utils.SendSuccess(c, "event sponsor link updated", link)
}

func (h *AdminSponsorHandler) unlink(c *fiber.Ctx) error {
	linkID, err := parseUintParam(c, "linkId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	actor := activityActorFromContext(c)

	if err := h.service.UnlinkFromEvent(c.Context(), linkID, actor); err != nil {
		if errors.Is(err, service.ErrEventSponsorNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "event sponsor link not found")
		}
		h.logger.Error().Err(err).Uint("link_id", linkID).Msg("failed to unlink sponsor from event")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to unlink sponsor from event")
	}

	return utils.SendSuccess(c, "sponsor unlinked from event", fiber.Map{"id": linkID})
}
