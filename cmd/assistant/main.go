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

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zentrium/assistant-engine-go/internal/config"
	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/engine"
	"github.com/zentrium/assistant-engine-go/internal/handler"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
	"github.com/zentrium/assistant-engine-go/internal/infra/resilience"
	"github.com/zentrium/assistant-engine-go/internal/port"
	"github.com/zentrium/assistant-engine-go/internal/relay"
	"github.com/zentrium/assistant-engine-go/internal/session"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("idle_window", cfg.IdleWindow),
		zap.Duration("relay_timeout", cfg.RelayTimeout),
	)

	// --- Tracing ---
	shutdownTracer, err := observability.InitTracer(context.Background(), "assistant-engine", cfg.OTLPEndpoint)
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Session store ---
	var store port.SessionStore
	switch cfg.StoreBackend {
	case "redis":
		store, err = session.NewRedisStore(context.Background(), cfg.RedisURL, cfg.SessionTTL, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		logger.Info("using redis session store")
	case "memory":
		store = session.NewMemoryStore()
		logger.Warn("using in-memory session store, sessions will not survive restarts")
	default:
		store, err = session.NewSQLiteStore(cfg.SQLitePath, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite store", zap.Error(err))
		}
		logger.Info("using sqlite session store", zap.String("path", cfg.SQLitePath))
	}
	defer store.Close()

	// --- Engine ---
	responder := engine.NewResponder(domain.DefaultKnowledgeBase(), nil)
	eng := engine.NewEngine(store, responder, metrics, logger)
	mgr := session.NewManager(store, cfg.SessionTTL, metrics, logger)

	// --- Contact relay ---
	relayClient := &http.Client{Timeout: cfg.RelayTimeout}
	transports := []port.MailTransport{
		relay.NewEmailJSTransport(relayClient,
			cfg.EmailJSEndpoint, cfg.EmailJSServiceID, cfg.EmailJSTemplateID,
			cfg.ContactToEmail, cfg.ContactCCEmail),
		relay.NewFormSubmitTransport(relayClient, cfg.FormSubmitEndpoint, cfg.ContactCCEmail),
	}
	relaySvc := relay.NewService(
		transports,
		resilience.Config{
			MaxRetries:     cfg.MaxRetries,
			InitialBackoff: cfg.InitialBackoff,
			MaxConcurrency: cfg.MaxConcurrency,
		},
		[]string{cfg.ContactToEmail, cfg.ContactCCEmail},
		metrics,
		logger,
	)

	// --- Router ---
	router := handler.NewRouter(eng, mgr, relaySvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	monitor := engine.NewMonitor(mgr, eng, cfg.IdleWindow, cfg.IdleSweepInterval, logger)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := monitor.Run(gCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gCtx.Done()

		logger.Info("server shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
