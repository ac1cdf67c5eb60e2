package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abdxl-cloud/RuqyaHub/internal/config"
	"github.com/abdxl-cloud/RuqyaHub/internal/database"
	"github.com/abdxl-cloud/RuqyaHub/internal/handler"
	"github.com/abdxl-cloud/RuqyaHub/internal/repository"
	"github.com/abdxl-cloud/RuqyaHub/internal/router"
	"github.com/abdxl-cloud/RuqyaHub/internal/service"
	"github.com/abdxl-cloud/RuqyaHub/internal/ws"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	log := newLogger(cfg)
	gin.SetMode(cfg.Server.Mode)

	db, err := database.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init database")
	}
	defer db.Close()

	if err := db.SeedAdmin(&cfg.Auth); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}
	log.Info().Str("dbname", cfg.Database.DBName).Msg("database connected")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	repos := repository.NewRepositories(db.DB)
	services := service.NewServices(repos, cfg)

	// The registry lives here, at the composition root, and is handed to
	// both ingress paths.
	registry := ws.NewRegistry(log)
	gateway := ws.NewGateway(registry, services.Chat, services.Auth, log)
	handlers := handler.NewHandlers(services, registry)

	r := router.SetupRouter(handlers, services, gateway, rdb, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	if cfg.App.Debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	if cfg.App.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}
