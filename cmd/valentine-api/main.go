package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PabloGalante/valentine-quest/internal/adapters/geo"
	httpadapter "github.com/PabloGalante/valentine-quest/internal/adapters/http"
	"github.com/PabloGalante/valentine-quest/internal/adapters/llm"
	firestorestore "github.com/PabloGalante/valentine-quest/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/valentine-quest/internal/adapters/storage/memory"
	"github.com/PabloGalante/valentine-quest/internal/app/dashboard"
	"github.com/PabloGalante/valentine-quest/internal/app/experience"
	"github.com/PabloGalante/valentine-quest/internal/app/message"
	"github.com/PabloGalante/valentine-quest/internal/app/tracking"
	"github.com/PabloGalante/valentine-quest/internal/config"
	"github.com/PabloGalante/valentine-quest/internal/domain"
	"github.com/PabloGalante/valentine-quest/internal/observability"
)

const serviceName = "valentine-api"

func main() {
	if err := run(); err != nil {
		observability.Logger().Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	observability.SetLevel(cfg.LogLevel)
	log := observability.WithFields("service", serviceName, "mode", cfg.Mode)

	// Traces + metrics
	providers, err := observability.NewProviders(ctx, cfg.OTLPEndpoint, serviceName)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			log.Warn("telemetry provider shutdown", "error", err)
		}
	}()
	metrics, err := observability.NewMetrics(providers.MeterProvider)
	if err != nil {
		return err
	}

	// LLM: mock or Gemini
	var llmClient domain.LLMClient
	if cfg.UseMockLLM {
		log.Info("using mock LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Info("using Gemini LLM client", "model", cfg.ModelName)
		llmClient, err = llm.NewGeminiClient(ctx, llm.GeminiConfig{
			APIKey:    cfg.GenAIAPIKey,
			Project:   cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			return err
		}
	}

	// Storage: Firestore or Memory
	var (
		sessionStore  domain.SessionStore
		eventStore    domain.EventStore
		responseStore domain.QuizResponseStore
	)
	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using Firestore storage", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return err
		}
		defer fsStore.Close()

		// 1 store, implements 3 interfaces
		sessionStore = fsStore
		eventStore = fsStore
		responseStore = fsStore
	default:
		log.Info("using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		eventStore = memstore.NewEventStore()
		responseStore = memstore.NewQuizResponseStore()
	}

	tracker := tracking.NewTracker(sessionStore,
		geo.NewLocator(cfg.GeoPrimaryURL, cfg.GeoFallbackURL, cfg.GeoTimeout),
		tracking.WithTrackerLogger(log),
		tracking.WithTrackerMetrics(metrics),
	)
	sink := tracking.NewSink(tracker, eventStore, responseStore,
		tracking.WithSinkLogger(log),
		tracking.WithSinkMetrics(metrics),
		tracking.WithWriteTimeout(cfg.TelemetryTimeout),
	)
	generator := message.NewGenerator(llmClient, cfg.SenderName,
		message.WithTimeout(cfg.GenerationTimeout),
		message.WithLogger(log),
		message.WithMetrics(metrics),
	)
	experiences := experience.NewService(cfg.GirlfriendName, experience.FlowDeps{
		Telemetry:     sink,
		Generator:     generator,
		SuspenseDelay: cfg.SuspenseDelay,
		Logger:        log,
		Metrics:       metrics,
	})

	handler := httpadapter.NewServer(httpadapter.Deps{
		Tracker:    tracker,
		Sink:       sink,
		Experience: experiences,
		Dashboard:  dashboard.NewService(sessionStore, eventStore, responseStore, log),
		Logger:     log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	return shutdown(srv, experiences, sink, log)
}

// shutdown stops accepting requests, tears down the flows, then drains telemetry.
func shutdown(srv *http.Server, experiences *experience.Service, sink *tracking.Sink, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err := srv.Shutdown(ctx)
	experiences.Close()
	if derr := sink.Close(ctx); derr != nil {
		log.Warn("telemetry drain incomplete", "error", derr)
	}
	return err
}
