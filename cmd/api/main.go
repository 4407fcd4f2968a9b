package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/taskhub/task-service/internal/api"
	"github.com/taskhub/task-service/internal/infrastructure/config"
	mongodb "github.com/taskhub/task-service/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhub/task-service/internal/infrastructure/db/redis"
	"github.com/taskhub/task-service/internal/infrastructure/email"
	"github.com/taskhub/task-service/internal/infrastructure/queue"
	"github.com/taskhub/task-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title TaskHub API
// @version 1.0
// @description Multi-tenant task tracking service: accounts, sessions and
// @description ownership-scoped tasks.
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Session token issued by signup or login, as "Bearer <token>".
//
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	mailer := email.NewMailer(email.Config{
		Endpoint: cfg.Email.Endpoint,
		APIKey:   cfg.Email.APIKey,
		Sender:   cfg.Email.Sender,
	}, log)

	// The dispatcher outlives the signal context so that requests finishing
	// during shutdown can still hand off their notifications.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	defer stopDispatch()

	dispatcher := queue.NewDispatcher(cfg.Email.Workers, mailer, log)
	dispatcher.Start(dispatchCtx)

	e := api.NewRouter(db, rdb, dispatcher, cfg, log)

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	stopDispatch()

	if err := mongodb.Disconnect(context.Background(), client); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close failed")
	}

	log.Info().Msg("shutdown complete")
}
