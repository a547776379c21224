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

	"github.com/lectapp/lector-api/internal/config"
	"github.com/lectapp/lector-api/internal/database"
	"github.com/lectapp/lector-api/internal/evaluator"
	"github.com/lectapp/lector-api/internal/handler"
	"github.com/lectapp/lector-api/internal/middleware"
	"github.com/lectapp/lector-api/internal/models"
	"github.com/lectapp/lector-api/internal/repository"
	"github.com/lectapp/lector-api/internal/router"
	"github.com/lectapp/lector-api/internal/service"
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
		&models.Passage{},
		&models.Question{},
		&models.Recording{},
		&models.Response{},
		&models.Evaluation{},
		&models.Assessment{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	registry := evaluator.NewRegistry()
	registry.Register(evaluator.LevenshteinName, evaluator.NewLevenshteinStrategy(cfg.ConfidenceFloor))
	registry.Register(evaluator.AIName, evaluator.NewAIStrategy())

	passageRepo := repository.NewPassageRepository(db)
	recordingRepo := repository.NewRecordingRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	passageService := service.NewPassageService(passageRepo, validate, logger)
	recordingService := service.NewRecordingService(recordingRepo, passageRepo, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, registry, natsConn, service.AssessmentConfig{
		AudioEvalTimeout: cfg.AudioEvalTimeout,
		EventSubject:     cfg.EventSubject,
	}, logger)
	dashboardService := service.NewDashboardService(passageRepo, recordingRepo, assessmentRepo, redisClient, cfg.DashboardCacheTTL, logger)

	passageHandler := handler.NewPassageHandler(passageService, logger)
	recordingHandler := handler.NewRecordingHandler(recordingService, logger)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, validate, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		PassageHandler:    passageHandler,
		RecordingHandler:  recordingHandler,
		AssessmentHandler: assessmentHandler,
		DashboardHandler:  dashboardHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

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
