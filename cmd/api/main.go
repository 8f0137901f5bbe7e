package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/institute-api/internal/cache"
	"github.com/noah-isme/institute-api/internal/config"
	"github.com/noah-isme/institute-api/internal/database"
	"github.com/noah-isme/institute-api/internal/handler"
	"github.com/noah-isme/institute-api/internal/middleware"
	"github.com/noah-isme/institute-api/internal/models"
	"github.com/noah-isme/institute-api/internal/repository"
	"github.com/noah-isme/institute-api/internal/router"
	"github.com/noah-isme/institute-api/internal/service"
	cloud "github.com/noah-isme/institute-api/pkg/cloudinary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Event{},
		&models.Achievement{},
		&models.Testimonial{},
		&models.Sponsor{},
		&models.EventSponsor{},
		&models.Setting{},
		&models.AdminUser{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional; without them the cache degrades to
	// pass-through and invalidation stays node-local.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, query cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queryCache := cache.New(redisClient, natsConn, "institute", logger)
	queryCache.Start(ctx)

	validate := validator.New(validator.WithRequiredStructEnabled())

	categoryRepo := repository.NewCategoryRepository(db)
	eventRepo := repository.NewEventRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	testimonialRepo := repository.NewTestimonialRepository(db)
	sponsorRepo := repository.NewSponsorRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityRepo, queryCache, cfg.ActivityCacheTTL, validate, logger)
	categoryService := service.NewCategoryService(categoryRepo, queryCache, cfg.TaxonomyCacheTTL, validate, activityService, logger)
	eventService := service.NewEventService(eventRepo, queryCache, cfg.ContentCacheTTL, validate, activityService, cfg.RegistrationURL, logger)
	achievementService := service.NewAchievementService(achievementRepo, queryCache, cfg.ContentCacheTTL, cfg.StatsCacheTTL, validate, activityService, logger)
	testimonialService := service.NewTestimonialService(testimonialRepo, queryCache, cfg.ContentCacheTTL, validate, activityService, logger)
	sponsorService := service.NewSponsorService(sponsorRepo, eventRepo, queryCache, cfg.ContentCacheTTL, validate, activityService, logger)
	settingsService := service.NewSettingsService(settingRepo, queryCache, cfg.TaxonomyCacheTTL, validate, activityService, cfg.RegistrationURL, logger)
	analyticsService := service.NewAnalyticsService(eventRepo, achievementRepo, testimonialRepo, sponsorRepo, activityRepo, queryCache, cfg.StatsCacheTTL, logger)

	notifications := service.NewNotificationCenter(logger)
	settingsService.Subscribe(func(key string) {
		if key == "" {
			return
		}
		notifications.Notify(service.Notification{
			Type:     service.NotificationInfo,
			Title:    "Settings updated",
			Message:  "Site setting " + key + " changed",
			Duration: 10 * time.Second,
		})
	})

	var uploadService service.UploadService
	if cfg.CloudinaryCloudName != "" {
		uploader, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploadService = service.NewUploadService(uploader, activityService, cfg.UploadMaxMB, logger)
	} else {
		logger.Warn().Msg("cloudinary not configured, uploads disabled")
	}

	deps := router.Dependencies{
		EventHandler:       handler.NewEventHandler(eventService, logger),
		AchievementHandler: handler.NewAchievementHandler(achievementService, logger),
		TestimonialHandler: handler.NewTestimonialHandler(testimonialService, logger),
		SponsorHandler:     handler.NewSponsorHandler(sponsorService, logger),
		CategoryHandler:    handler.NewCategoryHandler(categoryService, logger),
		SettingsHandler:    handler.NewSettingsHandler(settingsService, logger),

		AdminEventHandler:       handler.NewAdminEventHandler(eventService, logger),
		AdminAchievementHandler: handler.NewAdminAchievementHandler(achievementService, logger),
		AdminTestimonialHandler: handler.NewAdminTestimonialHandler(testimonialService, logger),
		AdminSponsorHandler:     handler.NewAdminSponsorHandler(sponsorService, logger),
		AdminCategoryHandler:    handler.NewAdminCategoryHandler(categoryService, logger),
		AdminSettingsHandler:    handler.NewAdminSettingsHandler(settingsService, logger),
		AdminActivityHandler:    handler.NewAdminActivityHandler(activityService, cfg.ActivityRetentionDays, logger),
		AdminAnalyticsHandler:   handler.NewAdminAnalyticsHandler(analyticsService, logger),
	}
	if uploadService != nil {
		deps.UploadHandler = handler.NewUploadHandler(uploadService, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, cancel)
}

func waitForShutdown(app *fiber.App, cancel context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	cancel()

	ctx, cancelTimeout := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelTimeout()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
