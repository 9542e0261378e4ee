package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/dsbe-portal-api/internal/config"
	"github.com/noah-isme/dsbe-portal-api/internal/csvimport"
	"github.com/noah-isme/dsbe-portal-api/internal/database"
	"github.com/noah-isme/dsbe-portal-api/internal/handler"
	"github.com/noah-isme/dsbe-portal-api/internal/middleware"
	"github.com/noah-isme/dsbe-portal-api/internal/models"
	"github.com/noah-isme/dsbe-portal-api/internal/repository"
	"github.com/noah-isme/dsbe-portal-api/internal/router"
	"github.com/noah-isme/dsbe-portal-api/internal/service"
	"github.com/noah-isme/dsbe-portal-api/internal/validation"
	cloud "github.com/noah-isme/dsbe-portal-api/pkg/cloudinary"
	"github.com/noah-isme/dsbe-portal-api/pkg/objectstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, caching and cross-instance feed disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	archive, err := newArchive(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create upload archive: %v", err)
	}

	validate := validation.New()

	formRepo := repository.NewFormSubmissionRepository(db)
	verificationRepo := repository.NewVerificationRequestRepository(db)
	applicationRepo := repository.NewApplicationStatusRepository(db)
	resultRepo := repository.NewStudentResultRepository(db)
	verificationDataRepo := repository.NewVerificationDataRepository(db)
	userRepo := repository.NewUserRepository(db)
	importRepo := repository.NewImportRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	eventService := service.NewEventService(redisClient, cfg.EventChannel, natsConn, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	formService := service.NewFormService(formRepo, validate, eventService, redisClient, logger)
	verificationService := service.NewVerificationService(verificationRepo, verificationDataRepo, validate, eventService, redisClient, logger)
	applicationService := service.NewApplicationService(applicationRepo, logger)
	resultService := service.NewResultService(resultRepo, redisClient, cfg.MeritCacheTTL, cfg.MeritListSize, logger)
	courseService := service.NewCourseService()
	contentService := service.NewContentService(service.BoardProfile{
		Name:        cfg.BoardName,
		Established: cfg.BoardEstablished,
	}, formRepo, resultRepo, verificationDataRepo, logger)
	authService := service.NewAuthService(userRepo, service.AuthConfig{
		Secret:        cfg.JWTSecret,
		TTL:           cfg.JWTTTL,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		AdminName:     cfg.BoardName + " Admin",
	}, logger)
	adminService := service.NewAdminService(service.AdminDependencies{
		Forms:             formRepo,
		Verifications:     verificationRepo,
		Applications:      applicationRepo,
		Results:           resultRepo,
		VerificationData:  verificationDataRepo,
		Users:             userRepo,
		Imports:           importRepo,
		Cache:             redisClient,
		DashboardCacheTTL: cfg.DashboardCacheTTL,
		Activity:          activityService,
		Events:            eventService,
	}, logger)
	datasetService := service.NewDatasetService(service.DatasetDependencies{
		Applications:     applicationRepo,
		Results:          resultRepo,
		VerificationData: verificationDataRepo,
		Imports:          importRepo,
		Importer:         csvimport.NewImporter(validate),
		Archive:          archive,
		Cache:            redisClient,
		Activity:         activityService,
		Events:           eventService,
		MaxSizeMB:        cfg.UploadMaxSizeMB,
	}, logger)

	submissionLimit := middleware.RateLimit("submissions", cfg.SubmissionRateLimit, cfg.SubmissionRateWindow)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:    &logger,
		AccessLog: cfg.AppEnv != "test",
	})
	router.Register(app, cfg, router.Dependencies{
		DB:                db,
		Cache:             redisClient,
		ContentHandler:    handler.NewContentHandler(contentService, courseService, logger),
		AuthHandler:       handler.NewAuthHandler(authService, middleware.JWTProtected(cfg.JWTSecret), logger),
		SubmissionHandler: handler.NewSubmissionHandler(formService, verificationService, submissionLimit, logger),
		LookupHandler:     handler.NewLookupHandler(applicationService, resultService, logger),
		AdminHandler:      handler.NewAdminHandler(adminService, activityService, validate, logger),
		DatasetHandler:    handler.NewDatasetHandler(datasetService, logger),
		FeedHandler:       handler.NewFeedHandler(eventService, logger, 0),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventService.Start(ctx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("addr", cfg.HTTPAddress()).Str("database", cfg.DatabaseDriver).Msg("portal api started")
	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

func newArchive(cfg config.Config, logger zerolog.Logger) (service.FileArchive, error) {
	switch cfg.ArchiveProvider() {
	case config.ArchiveCloudinary:
		return cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	case config.ArchiveMinIO:
		return objectstore.New(objectstore.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			Region:    cfg.MinIORegion,
			UseSSL:    cfg.MinIOUseSSL,
		}, logger)
	default:
		logger.Info().Msg("upload archive not configured, raw sheets are not retained")
		return nil, nil
	}
}
