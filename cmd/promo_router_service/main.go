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
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/promobot/golang_services/internal/platform/config"
	"github.com/promobot/golang_services/internal/platform/database"
	"github.com/promobot/golang_services/internal/platform/logger"
	"github.com/promobot/golang_services/internal/platform/messagebroker"
	"github.com/promobot/golang_services/internal/promo_router_service/adapters/sheets"
	"github.com/promobot/golang_services/internal/promo_router_service/adapters/whatsapp"
	"github.com/promobot/golang_services/internal/promo_router_service/app"
	"github.com/promobot/golang_services/internal/promo_router_service/domain"
	"github.com/promobot/golang_services/internal/promo_router_service/phone"
	pgrepo "github.com/promobot/golang_services/internal/promo_router_service/repository/postgres"
	httptransport "github.com/promobot/golang_services/internal/promo_router_service/transport/http"
)

const serviceName = "promo_router_service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Promo router service starting...", "port", cfg.Port, "record_store", cfg.RecordStore)

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Promo router service stopped with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Promo router service shut down.")
}

func run(cfg *config.Config, appLogger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := newPromotionSource(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeSource()

	// Escalation events are optional; the router works without a broker.
	var publisher app.EventPublisher
	if cfg.NATSUrl != "" {
		natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			appLogger.Warn("NATS unavailable, escalation events disabled", "error", err)
		} else {
			defer natsClient.Close()
			publisher = natsClient
			appLogger.Info("Connected to NATS", "url", cfg.NATSUrl)
		}
	}

	normalizer := phone.NewNormalizer(phone.DefaultRules, appLogger)
	sender := whatsapp.NewClient(whatsapp.ClientConfig{
		BaseURL:     cfg.WhatsAppAPIBaseURL,
		APIVersion:  cfg.WhatsAppAPIVersion,
		PhoneID:     cfg.WhatsAppPhoneID,
		AccessToken: cfg.WhatsAppToken,
		Timeout:     cfg.ExternalCallTimeout,
	}, normalizer, appLogger, nil)

	lookup := app.NewPromotionLookup(source, cfg.ExternalCallTimeout, appLogger)
	escalator := app.NewEscalator(sender, publisher, cfg.AdvisorPhone, cfg.ExternalCallTimeout, appLogger)
	if !escalator.Enabled() {
		appLogger.Warn("ADVISOR_PHONE not set; operator escalation disabled")
	}
	router := app.NewRouter(app.NewClassifier(cfg.StrictMenuDigits), lookup, sender, escalator, cfg.ExternalCallTimeout, appLogger)

	webhookHandler := httptransport.NewWebhookHandler(httptransport.HandlerConfig{
		VerifyToken: cfg.VerifyToken,
		AppSecret:   cfg.WhatsAppAppSecret,
		CallTimeout: cfg.ExternalCallTimeout,
	}, router, sender, validator.New(), appLogger)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = promhttp.Handler()
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httptransport.NewRouter(webhookHandler, metricsHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info(fmt.Sprintf("Promo router listening on port %d", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed to serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutdown signal received, shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("HTTP server shutdown failed: %w", err)
		}
		appLogger.Info("HTTP server shut down gracefully.")
		return nil
	})

	return g.Wait()
}

func newPromotionSource(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (domain.PromotionSource, func(), error) {
	switch cfg.RecordStore {
	case config.RecordStorePostgres:
		pool, err := database.NewDBPool(ctx, cfg.PostgresDSN, cfg.ExternalCallTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		appLogger.Info("Promotions served from PostgreSQL")
		return pgrepo.NewPgPromotionRepository(pool, appLogger), pool.Close, nil
	default:
		svc, err := sheets.NewService(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		appLogger.Info("Promotions served from Google Sheets", "sheet_id", cfg.GoogleSheetID, "range", cfg.GoogleSheetRange)
		return sheets.NewPromotionSource(svc, cfg.GoogleSheetID, cfg.GoogleSheetRange, appLogger), func() {}, nil
	}
}
