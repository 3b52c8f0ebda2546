// Command server runs the health-record API: the domain store hydrated from
// the configured snapshot backend, the record and identity services, and the
// HTTP surface.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"medichart/internal/changelog"
	"medichart/internal/identity"
	"medichart/internal/platform/config"
	"medichart/internal/platform/httpserver"
	"medichart/internal/platform/logger"
	"medichart/internal/platform/metrics"
	"medichart/internal/platform/middleware"
	"medichart/internal/records/handler"
	"medichart/internal/records/seed"
	"medichart/internal/records/service"
	"medichart/internal/records/store"
	"medichart/internal/snapshot"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snaps, closeSnaps, err := snapshot.Open(ctx, snapshot.Options{
		Backend:     cfg.SnapshotBackend,
		Dir:         cfg.SnapshotDir,
		RedisURL:    cfg.RedisURL,
		PostgresDSN: cfg.PostgresDSN,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("open snapshot backend: %w", err)
	}
	defer func() {
		if err := closeSnaps(); err != nil {
			log.Error("close snapshot backend", slog.Any("error", err))
		}
	}()
	log.Info("snapshot backend ready", slog.String("backend", cfg.SnapshotBackend))

	st, err := store.New(ctx, snaps)
	if err != nil {
		return fmt.Errorf("hydrate store: %w", err)
	}

	creds, err := identity.NewCredentialStore(ctx, snaps)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	if cfg.SeedDemoData {
		if err := seed.Run(ctx, st, creds, snaps, log); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	publishers := changelog.Fanout{changelog.NewSlogPublisher(log)}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := changelog.NewKafkaPublisher(cfg.KafkaBrokers, cfg.ChangelogTopic)
		if err != nil {
			return fmt.Errorf("connect changelog broker: %w", err)
		}
		defer kafka.Close()
		publishers = append(publishers, kafka)
		log.Info("changelog streaming enabled", slog.String("topic", cfg.ChangelogTopic))
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	m.SetCollectionSizes(st.Counts())

	svc := service.New(st,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithPublisher(publishers),
	)

	tokens := identity.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL)
	idSvc := identity.NewService(st, creds, tokens, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Actor(tokens))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	router.Mount("/auth", identity.NewHandler(idSvc, svc).Routes())
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireActor)
		r.Mount("/api", handler.New(svc, log).Routes())
	})

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}
