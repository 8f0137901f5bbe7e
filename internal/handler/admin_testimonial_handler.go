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

// AdminTestimonialHandler manages testimonial moderation endpoints.
type AdminTestimonialHandler struct {
	service service.TestimonialService
	logger  zerolog.Logger
}

// NewAdminTestimonialHandler constructs the handler.
func NewAdminTestimonialHandler(service service.TestimonialService, logger zerolog.Logger) *AdminTestimonialHandler {
	return &AdminTestimonialHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_testimonial_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminTestimonialHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Post("/:id/approve", h.approve)
	router.Post("/:id/reject", h.reject)
	router.Delete("/:id", h.delete)
}

func (h *AdminTestimonialHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "pageSize")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page size")
	}
	featured, err := parseQueryBoolPtr(c, "featured")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid featured flag")
	}

	req := dto.TestimonialListRequest{
		Status:   strings.TrimSpace(c.Query("status")),
		Featured: featured,
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.service.AdminList(c.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list testimonials (admin)")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list testimonials")
	}

	meta := fiber.Map{
		"pagination": result.Pagination,
		"filters":    fiber.Map{"status": req.Status},
	}

	return utils.OK(c, result.Items, "testimonials retrieved", meta)
}

func (h *AdminTestimonialHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	testimonial, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTestimonialNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "testimonial not found")
		}
		h.logger.Error().Err(err).Uint("testimonial_id", id).Msg("failed to fetch testimonial")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch testimonial")
	}

	return utils.SendSuccess(c, "testimonial retrieved", testimonial)
}

func (h *AdminTestimonialHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.TestimonialUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	testimonial, err := h.service.Update(c.Context(), id, payload, actor)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrTestimonialNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "testimonial not found")
		default:
			h.logger.Error().Err(err).Uint("testimonial_id", id).Msg("failed to update testimonial")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update testimonial")
		}
	}

	return utils.SendSuccess(c, "testimonial updated", testimonial)
}

func (h *AdminTestimonialHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	actor := activityActorFromContext(c)

	testimonial, err := h.service.Approve(c.Context(), id, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestimonialNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "testimonial not found")
		case errors.Is(err, service.ErrTestimonialAlreadyModerated):
			return utils.SendError(c, fiber.StatusConflict, "testimonial has already been moderated")
		default:
			h.logger.Error().Err(err).Uint("testimonial_id", id).Msg("failed to approve testimonial")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to approve testimonial")
		}
	}

	return utils.SendSuccess(c, "testimonial approved", testimonial)
}

func (h *AdminTestimonialHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	var payload dto.TestimonialRejectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	actor := activityActorFromContext(c)

	testimonial, err := h.service.Reject(c.Context(), id, payload.Reason, actor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTestimonialNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "testimonial not found")
		case errors.Is(err, service.ErrTestimonialAlreadyModerated):
			return utils.SendError(c, fiber.StatusConflict, "testimonial has already been moderated")
		default:
			h.logger.Error().Err(err).Uint("testimonial_id", id).Msg("failed to reject testimonial")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to reject testimonial")
		}
	}

	return utils.SendSuccess(c, "testimonial rejected", testimonial)
}

func (h *AdminTestimonialHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}
	actor := activityActorFromContext(c)

	if err := h.service.Delete(c.Context(), id, actor); err != nil {
		if errors.Is(err, service.ErrTestimonialNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "testimonial not found")
		}
		h.logger.Error().Err(err).Uint("testimonial_id", id).Msg("failed to delete testimonial")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete testimonial")
	}

	return utils.SendSuccess(c, "testimonial deleted", fiber.Map{"id": id})
}
