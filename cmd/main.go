package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"portfolio-tracker/config"
	"portfolio-tracker/internal/handlers"
	"portfolio-tracker/internal/services"
	"portfolio-tracker/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(appLog)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	client, err := config.ConnectDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize MongoDB")
	}
	defer config.DisconnectDB(client)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	wsHub := services.NewWebSocketHub(appLog)
	store := services.NewMongoPortfolioStore(
		config.GetCollection(client, cfg, "entries"),
		config.GetCollection(client, cfg, "portfolio"),
		appLog,
	)
	portfolioService := services.NewPortfolioService(store, wsHub, appLog)

	go wsHub.Run(ctx)

	h := handlers.Handlers{
		Portfolio: handlers.NewPortfolioHandler(portfolioService),
		WebSocket: handlers.NewWebSocketHandler(wsHub, appLog),
	}
	if cfg.AuthEnabled {
		authService := services.NewAuthService(config.GetCollection(client, cfg, "users"), appLog)
		h.Auth = handlers.NewAuthHandler(authService, cfg.JWTSecret)
	}
	router := handlers.NewRouter(h, appLog)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Bool("auth", cfg.AuthEnabled).
			Msg("Portfolio tracker backend running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
