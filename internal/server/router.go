package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/at-ishikawa/lessoncraft/internal/config"
)

// NewRouter builds the HTTP routing table for the lesson API.
func NewRouter(cfg config.ServerConfig, handler *LessonHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/lessons", handler.Generate)
		api.GET("/lessons", handler.List)
		api.GET("/lessons/:id", handler.Get)
		api.DELETE("/lessons/:id", handler.Delete)
		api.GET("/lessons/:id/sections/:kind/questions", handler.Questions)
	}

	return router
}
