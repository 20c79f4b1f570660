package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/eduvoice/eduvoice-backend/internal/clients/redis"
	"github.com/eduvoice/eduvoice-backend/internal/config"
	"github.com/eduvoice/eduvoice-backend/internal/db"
	"github.com/eduvoice/eduvoice-backend/internal/handlers"
	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/middleware"
	"github.com/eduvoice/eduvoice-backend/internal/observability"
	"github.com/eduvoice/eduvoice-backend/internal/repos"
	"github.com/eduvoice/eduvoice-backend/internal/server"
	"github.com/eduvoice/eduvoice-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Config
	log.Info("Loading configuration from main...")
	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Config load failed", "error", err)
	}

	// Tracing
	shutdownTracing := observability.InitOTel(context.Background(), log, cfg.Otel)
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	studentRepo := repos.NewStudentRepo(thePG, log)
	textbookRepo := repos.NewTextbookRepo(thePG, log)
	bookTextRepo := repos.NewBookTextRepo(thePG, log)
	interactionLogRepo := repos.NewInteractionLogRepo(thePG, log)

	// Redis cache, optional
	var chapterCache redis.Cache
	if cfg.Redis.Addr != "" {
		chapterCache, err = redis.NewCache(cfg.Redis.Addr, log)
		if err != nil {
			log.Warn("Redis unavailable, continuing without cache", "error", err)
			chapterCache = nil
		} else {
			defer chapterCache.Close()
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	modelClient, err := services.NewOpenRouterClient(cfg.OpenRouter, log)
	if err != nil {
		log.Fatal("Could not init OpenRouterClient", "error", err)
	}
	tutorService := services.NewTutorService(log, studentRepo, textbookRepo, bookTextRepo, modelClient, cfg.Tutor)
	studentService := services.NewStudentService(log, studentRepo)
	contentService := services.NewContentService(log, textbookRepo, chapterCache, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
	interactionService := services.NewInteractionService(log, interactionLogRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	aiHandler := handlers.NewAIHandler(tutorService, interactionService)
	studentHandler := handlers.NewStudentHandler(studentService)
	contentHandler := handlers.NewContentHandler(contentService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		CORSOrigins:    cfg.CORSOrigins,
		RequestLog:     middleware.NewRequestLogMiddleware(log),
		AIHandler:      aiHandler,
		StudentHandler: studentHandler,
		ContentHandler: contentHandler,
	})

	fmt.Printf("Server listening on :%s\n", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
