package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shirt-orders/api/internal/auth"
	"github.com/shirt-orders/api/internal/catalog"
	"github.com/shirt-orders/api/internal/config"
	"github.com/shirt-orders/api/internal/database"
	"github.com/shirt-orders/api/internal/events"
	"github.com/shirt-orders/api/internal/logger"
	"github.com/shirt-orders/api/internal/router"
	"github.com/shirt-orders/api/internal/storage"
	"github.com/shirt-orders/api/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() error {
	cfg := config.Load()
	logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		var err error
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			return err
		}
	}
	log.Info().Str("version", cat.Version).Int("variants", len(cat.Variants)).Msg("catalog loaded")

	if err := database.Migrate(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	store, err := storage.NewMinioStore(cfg.Storage)
	if err != nil {
		return err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}

	var revoker auth.Revoker
	if cfg.RedisURL != "" {
		rdb, err := auth.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		revoker = auth.NewRedisRevoker(rdb)
	} else {
		log.Warn().Msg("REDIS_URL not set, logout will not revoke tokens")
	}

	hub := ws.NewHub()
	go hub.Run(ctx)
	publisher := events.Fanout{hub}

	if cfg.RabbitURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitURL, cfg.Exchange)
		if err != nil {
			return err
		}
		defer amqpPub.Close()
		publisher = append(publisher, amqpPub)
		log.Info().Str("exchange", cfg.Exchange).Msg("publishing order events to rabbitmq")
	}

	r, err := router.New(cfg, router.Deps{
		Queries:   database.New(pool),
		Catalog:   cat,
		Store:     store,
		Revoker:   revoker,
		Hub:       hub,
		Publisher: publisher,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
