// Path: cmd/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bank-backend/internal/config"
	"bank-backend/internal/handlers"
	"bank-backend/internal/repository/postgres"
	"bank-backend/internal/services"
	"bank-backend/pkg/database"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	log := cfg.NewLogger()

	db, err := database.InitDB(cfg.DatabaseURL, logger.Warn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Error("Failed to close database")
		}
	}()
	log.WithField("dsn", config.MaskDSN(cfg.DatabaseURL)).Info("Database ready")

	store := postgres.NewStore(db)
	svc, err := services.NewService(
		store,
		services.NewJWTService(cfg.SigningKey, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration),
		services.NewPasswordEncoder(cfg.BcryptCost),
		cfg.SigningKey,
		log,
	)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	h := handlers.NewHandler(svc, log)
	app := handlers.NewApp(h, handlers.AppConfig{
		AllowOrigins:    cfg.CORSAllowOrigins,
		RateLimitMax:    cfg.RateLimit.Max,
		RateLimitWindow: cfg.RateLimit.Window,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{
		"port":           cfg.Port,
		"access_ttl":     cfg.JWT.AccessExpiration.String(),
		"refresh_ttl":    cfg.JWT.RefreshExpiration.String(),
		"rate_limit_max": cfg.RateLimit.Max,
	}).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Errorf("Server stopped: %v", err)
	}
}
