package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/config"
	"github.com/noah-isme/institute-api/internal/dto"
	"github.com/noah-isme/institute-api/internal/handler"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
	"github.com/noah-isme/institute-api/internal/router"
	"github.com/noah-isme/institute-api/internal/service"
)

func setupTestimonialApp(t *testing.T, cfg config.Config) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Testimonial{}))

	logger := zerolog.New(io.Discard)
	validate := validator.New(validator.WithRequiredStructEnabled())
	queryCache := cache.New(nil, nil, "institute", logger)

	testimonialRepo := repository.NewTestimonialRepository(db)
	testimonialService := service.NewTestimonialService(testimonialRepo, queryCache, time.Minute, validate, nil, logger)

	app := fiber.New()
	router.Register(app, cfg, router.Dependencies{
		TestimonialHandler:      handler.NewTestimonialHandler(testimonialService, logger),
		AdminTestimonialHandler: handler.NewAdminTestimonialHandler(testimonialService, logger),
	})

	return app, db
}

func adminToken(t *testing.T, secret, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  9,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTestimonialSubmitReturnsPending(t *testing.T) {
	app, db := setupTestimonialApp(t, config.Config{AppName: "Test"})

	payload := map[string]interface{}{
		"student_name": "Amira Hassan",
		"story":        "The embedded systems track changed how I approach engineering problems.",
		"program":      "Electrical Engineering",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/testimonials", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var submitResp struct {
		Success bool                    `json:"success"`
		Message string                  `json:"message"`
		Data    dto.TestimonialResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitResp))
	require.True(t, submitResp.Success)
	require.Equal(t, "testimonial submitted for review", submitResp.Message)
	require.Equal(t, models.TestimonialStatusPending, submitResp.Data.Status)

	var stored models.Testimonial
	require.NoError(t, db.First(&stored, submitResp.Data.ID).Error)
	require.Equal(t, models.TestimonialStatusPending, stored.Status)
}

func TestTestimonialSubmitRejectsShortStory(t *testing.T) {
	app, _ := setupTestimonialApp(t, config.Config{AppName: "Test"})

	body, err := json.Marshal(map[string]interface{}{
		"student_name": "Amira Hassan",
		"story":        "too short",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/testimonials", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTestimonialPublicListShowsApprovedOnly(t *testing.T) {
	app, db := setupTestimonialApp(t, config.Config{AppName: "Test"})

	approvedAt := time.Now()
	admin := uint(1)
	rows := []models.Testimonial{
		{StudentName: "Visible", Story: "An approved story about the institute.", Status: models.TestimonialStatusApproved, ApprovedAt: &approvedAt, ApprovedBy: &admin},
		{StudentName: "Waiting", Story: "A pending story nobody should see yet.", Status: models.TestimonialStatusPending},
		{StudentName: "Refused", Story: "A rejected story nobody should see.", Status: models.TestimonialStatusRejected, RejectionReason: "off topic"},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/testimonials", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listResp struct {
		Success bool                        `json:"success"`
		Data    dto.TestimonialListResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResp))
	require.True(t, listResp.Success)
	require.Len(t, listResp.Data.Items, 1)
	require.Equal(t, "Visible", listResp.Data.Items[0].StudentName)
}

func TestAdminRoutesDisabledWithoutSecret(t *testing.T) {
	app, _ := setupTestimonialApp(t, config.Config{AppName: "Test"})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/admin/testimonials", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestAdminRoutesRequireValidToken(t *testing.T) {
	cfg := config.Config{AppName: "Test", AdminJWTSecret: "test-secret"}
	app, db := setupTestimonialApp(t, cfg)

	require.NoError(t, db.Create(&models.Testimonial{
		StudentName: "Waiting",
		Story:       "A pending story only admins can see.",
		Status:      models.TestimonialStatusPending,
	}).Error)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/admin/testimonials", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	viewer := httptest.NewRequest("GET", "/api/v1/admin/testimonials", nil)
	viewer.Header.Set("Authorization", "Bearer "+adminToken(t, cfg.AdminJWTSecret, "viewer"))
	resp, err = app.Test(viewer)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	superAdmin := httptest.NewRequest("GET", "/api/v1/admin/testimonials", nil)
	superAdmin.Header.Set("Authorization", "Bearer "+adminToken(t, cfg.AdminJWTSecret, "super_admin"))
	resp, err = app.Test(superAdmin)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var listResp struct {
		Success bool                      `json:"success"`
		Data    []dto.TestimonialResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResp))
	require.True(t, listResp.Success)
	require.Len(t, listResp.Data, 1)
}

func TestAdminModerationFlow(t *testing.T) {
	cfg := config.Config{AppName: "Test", AdminJWTSecret: "test-secret"}
	app, db := setupTestimonialApp(t, cfg)

	pending := models.Testimonial{
		StudentName: "Lena Petrova",
		Story:       "The mentorship program gave me the confidence to lead.",
		Status:      models.TestimonialStatusPending,
	}
	require.NoError(t, db.Create(&pending).Error)
	token := adminToken(t, cfg.AdminJWTSecret, "admin")

	approve := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/testimonials/%d/approve", pending.ID), nil)
	approve.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(approve)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var stored models.Testimonial
	require.NoError(t, db.First(&stored, pending.ID).Error)
	require.Equal(t, models.TestimonialStatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedAt)
	require.Equal(t, uint(9), *stored.ApprovedBy)

	again := httptest.NewRequest("POST", fmt.Sprintf("/api/v1/admin/testimonials/%d/approve", pending.ID), nil)
	again.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(again)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
}
