package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/eduvoice/eduvoice-backend/internal/handlers"
	"github.com/eduvoice/eduvoice-backend/internal/middleware"
)

type RouterConfig struct {
	CORSOrigins    []string
	RequestLog     *middleware.RequestLogMiddleware
	AIHandler      *handlers.AIHandler
	StudentHandler *handlers.StudentHandler
	ContentHandler *handlers.ContentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("eduvoice-backend"))
	if cfg.RequestLog != nil {
		router.Use(cfg.RequestLog.Handle())
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		ai := api.Group("/ai")
		{
			ai.POST("/chat", cfg.AIHandler.Chat)
			ai.POST("/session-end", cfg.AIHandler.EndSession)
			ai.POST("/log", cfg.AIHandler.LogInteraction)
		}

		students := api.Group("/students")
		{
			students.POST("", cfg.StudentHandler.Login)
			students.GET("/:id", cfg.StudentHandler.Get)
			students.PUT("/:id", cfg.StudentHandler.Update)
			students.GET("/:id/progress", cfg.StudentHandler.Progress)
			students.POST("/:id/notes", cfg.StudentHandler.SaveNotes)
		}

		content := api.Group("/content")
		{
			content.GET("/classes", cfg.ContentHandler.ListClasses)
			content.GET("/classes/:class/subjects", cfg.ContentHandler.ListSubjects)
			content.GET("/classes/:class/subjects/:subject/chapters", cfg.ContentHandler.ListChapters)
			content.GET("/classes/:class/subjects/:subject/chapters/:chapter", cfg.ContentHandler.GetChapter)
		}
	}

	return router
}
