package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdvcore/internal/audit"
	"pdvcore/internal/config"
	"pdvcore/internal/idgen"
	"pdvcore/internal/infra"
	"pdvcore/internal/repository"
	"pdvcore/internal/router"
	"pdvcore/internal/service"
	"pdvcore/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Audit events go onto a Redis queue; the worker pool drains them into
	// the audit_events table with a DLQ for poisoned entries.
	sink := audit.NewQueueSink(rdb, audit.NewZerologSink())
	auditRepo := repository.NewAuditRepository(db)
	worker.NewAuditPersister(rdb, auditRepo).Start(ctx, cfg.WorkerPoolSize)

	r, saleSvc := router.New(cfg, router.Deps{
		DB:    db,
		RDB:   rdb,
		IDs:   idgen.NewRandom(),
		Sink:  sink,
		Locks: service.NewProductLocks(),
	})

	// Settle any sale intents left PENDING by a previous crash before the
	// server takes traffic.
	if resolved, err := saleSvc.RecoverPending(ctx); err != nil {
		log.Fatal().Err(err).Msg("intent recovery failed")
	} else if resolved > 0 {
		log.Info().Int("resolved", resolved).Msg("recovered pending sale intents")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("pdvcore listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
