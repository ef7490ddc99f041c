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
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"stock-portfolio/config"
	"stock-portfolio/database"
	"stock-portfolio/handlers"
	"stock-portfolio/logger"
	"stock-portfolio/middleware"
	"stock-portfolio/quotes"
	"stock-portfolio/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	appLog := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(appLog)
	gin.SetMode(cfg.GinMode)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate models")
	}

	rdb, err := config.InitRedis(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	prices := quotes.NewAlphaVantage(cfg.AlphaVantageAPIKey,
		quotes.WithBaseURL(cfg.AlphaVantageBaseURL),
		quotes.WithTimeout(cfg.QuoteTimeout),
		quotes.WithRateLimit(cfg.QuoteRateLimit),
		quotes.WithLogger(appLog),
	)

	h := &handlers.Handler{
		Portfolio:    services.NewPortfolioService(db, prices, appLog),
		History:      services.NewHistoryService(db, appLog),
		Registration: services.NewRegistrationService(db, appLog),
		Auth: services.NewAuthService(db, services.NewRedisTokenStore(rdb), services.AuthConfig{
			Secret:     cfg.JWTSecret,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		}, appLog),
		Prices: prices,
		Log:    appLog,
	}

	router := handlers.NewRouter(h, handlers.RouterConfig{
		RequireAuth:          cfg.RequireAuth,
		SlowRequestThreshold: cfg.SlowRequestThreshold,
	})

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Bool("require_auth", cfg.RequireAuth).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}
