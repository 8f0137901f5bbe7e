package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/service"
	"github.com/noah-isme/institute-api/internal/utils"
)

// TestimonialHandler exposes public testimonial endpoints: the approved list
// and the open submission form.
type TestimonialHandler struct {
	service service.TestimonialService
	logger  zerolog.Logger
}

// NewTestimonialHandler constructs a testimonial handler.
func NewTestimonialHandler(service service.TestimonialService, logger zerolog.Logger) *TestimonialHandler {
	return &TestimonialHandler{
		service: service,
		logger:  logger.With().Str("component", "testimonial_handler").Logger(),
	}
}

// Register wires public testimonial routes.
func (h *TestimonialHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.submit)
}

func (h *TestimonialHandler) list(c *fiber.Ctx) error {
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

	result, err := h.service.ListApproved(c.Context(), featured, page, pageSize)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list testimonials")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list testimonials")
	}

	return utils.SendSuccess(c, "testimonials retrieved", result)
}

func (h *TestimonialHandler) submit(c *fiber.Ctx) error {
	var payload dto.TestimonialSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	testimonial, err := h.service.Submit(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error().Err(err).Msg("failed to submit testimonial")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to submit testimonial")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "testimonial submitted for review", testimonial)
}
