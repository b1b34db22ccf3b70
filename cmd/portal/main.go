package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	affiliateapp "github.com/nexusgg/partner-portal/internal/application/affiliate"
	agentapp "github.com/nexusgg/partner-portal/internal/application/agent"
	identityapp "github.com/nexusgg/partner-portal/internal/application/identity"
	"github.com/nexusgg/partner-portal/internal/demo"
	"github.com/nexusgg/partner-portal/internal/infrastructure/config"
	"github.com/nexusgg/partner-portal/internal/infrastructure/logger"
	"github.com/nexusgg/partner-portal/internal/infrastructure/notify"
	"github.com/nexusgg/partner-portal/internal/infrastructure/session"
	"github.com/nexusgg/partner-portal/internal/infrastructure/telemetry"
	"github.com/nexusgg/partner-portal/internal/interfaces/http/handler"
	"github.com/nexusgg/partner-portal/internal/interfaces/http/router"
	"github.com/nexusgg/partner-portal/internal/platform"
	"github.com/nexusgg/partner-portal/internal/query"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting partner portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	storePath := cfg.Session.StorePath
	if storePath == "" {
		storePath = session.DefaultPath()
	}
	sessions, err := session.NewFileStore(storePath, log)
	if err != nil {
		log.Fatal("Failed to open session store", zap.Error(err))
	}
	log.Info("Session store ready", zap.String("path", storePath))

	notifier := notify.NewZapNotifier(log)

	client := platform.New(platform.Config{
		BaseURL: cfg.API.Endpoint(),
		Timeout: cfg.API.Timeout,
	}, sessions, notifier, log)

	cache, err := query.NewFromConfig(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize query cache", zap.Error(err))
	}
	log.Info("Query cache ready", zap.String("backend", cfg.Cache.Backend))

	staleness := query.Staleness{
		Default: cfg.Cache.DefaultStaleness,
		Wallet:  cfg.Cache.WalletStaleness,
	}

	sessionSvc := identityapp.NewSessionService(
		platform.NewAuthService(client), sessions, cache, notifier, staleness.Default, log)
	agentSvc := agentapp.NewPortalService(
		platform.NewAgentService(client), cache, notifier, staleness, log)
	affiliateSvc := affiliateapp.NewPortalService(
		platform.NewAffiliateService(client), cache, notifier, staleness, log)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(sessionSvc, log),
		Agent:     handler.NewAgentHandler(agentSvc, log),
		Affiliate: handler.NewAffiliateHandler(affiliateSvc, log),
		Health:    handler.NewHealthHandler(version),
	}

	if cfg.Demo.Enabled {
		feed := demo.NewFeed(cfg.Demo.ActivityInterval, log)
		go feed.Run(ctx)
		handlers.Demo = handler.NewDemoHandler(feed, agentSvc, affiliateSvc, sessions, log)
		log.Warn("Demo mode enabled, feed and seed endpoints are live")
	}

	engine := router.New(cfg, sessions, handlers, log)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
