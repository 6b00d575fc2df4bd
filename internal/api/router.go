package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	Messages       MessageService
	Store          Pinger
	AllowedOrigins []string
	SendRPS        float64
	SendBurst      int
}

// NewRouter wires middleware and routes
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), RequestID(), Metrics())

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", Health(opts.Store))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authorized := router.Group("/api")
	authorized.Use(AuthMiddleware())
	NewMessageHandler(opts.Messages).Register(authorized, SendRateLimit(opts.SendRPS, opts.SendBurst))

	return router
}
