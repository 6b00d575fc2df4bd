package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/knowx/knowx-back/internal/api"
	"github.com/knowx/knowx-back/internal/auth"
	"github.com/knowx/knowx-back/internal/cache"
	"github.com/knowx/knowx-back/internal/config"
	"github.com/knowx/knowx-back/internal/conversation"
	"github.com/knowx/knowx-back/internal/database"
	"github.com/knowx/knowx-back/internal/directory"
	"github.com/knowx/knowx-back/internal/logger"
)

func main() {
	loaded, dotEnvErr := config.LoadDotEnv()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Configure log to write to both file and console
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer logFile.Close()
		logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
		gin.DefaultWriter = io.MultiWriter(os.Stdout, logFile)
	}
	if lvl, ok := logger.ParseLevel(cfg.LogLevel); ok {
		logger.SetMinLevel(lvl)
	}

	appLog := logger.New("server")
	if dotEnvErr != nil {
		appLog.Warn("Ignoring unreadable env file: %v", dotEnvErr)
	} else if len(loaded) == 0 {
		appLog.Info("No .env file found, using environment variables")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	auth.InitJWTKey([]byte(cfg.JWTSecret))

	ctx := context.Background()

	store, err := database.NewDatabase(ctx, cfg.Database)
	if err != nil {
		appLog.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer store.Close()
	appLog.Info("Connected to %s database successfully", cfg.Database.Type)

	var labelCache cache.Cache = cache.Noop{}
	if cfg.Redis.URL != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.URL, "knowx:")
		if err != nil {
			// names still resolve from the database, just uncached
			appLog.Warn("Redis unavailable, directory cache disabled: %v", err)
		} else {
			labelCache = rc
			defer rc.Close()
			appLog.Info("Directory cache enabled (ttl %s)", cfg.Redis.CacheTTL)
		}
	}

	resolver := directory.NewResolver(store, labelCache, cfg.Redis.CacheTTL)
	svc := conversation.NewService(store, resolver)

	router := api.NewRouter(api.RouterOptions{
		Messages:       svc,
		Store:          store,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		SendRPS:        cfg.RateLimit.SendRPS,
		SendBurst:      cfg.RateLimit.SendBurst,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		appLog.Info("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown: %v", err)
	}

	appLog.Info("Server exited properly")
}
