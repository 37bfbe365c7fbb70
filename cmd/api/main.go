package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/api/router"
	appconfig "github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/config"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dedup"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/dialogue"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/observability/metrics"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/patients"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/transcript"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/webhook"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/internal/whatsapp"
	"github.com/conectifisio-cpu/whatsapp-webhook-conectifisio/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting conectifisio whatsapp webhook",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	resolver, err := webhook.NewUnitResolver(cfg.UnitMapJSON, cfg.DefaultUnit)
	if err != nil {
		logger.Error("invalid UNIT_MAP_JSON", "error", err)
		os.Exit(1)
	}

	repo := patients.NewWixRepository(cfg.WixWebhookURL, cfg.WixTimeout, logger)
	messenger := whatsapp.NewClient(whatsapp.ClientConfig{
		APIVersion:    cfg.GraphAPIVersion,
		PhoneNumberID: cfg.PhoneNumberID,
		Token:         cfg.WhatsAppToken,
		Timeout:       cfg.SendTimeout,
		TypingDelay:   cfg.TypingDelay,
	}, logger)

	var empathy dialogue.EmpathyGenerator
	if gen := dialogue.NewOpenAIEmpathy(cfg.OpenAIAPIKey, cfg.EmpathyTimeout); gen != nil {
		empathy = gen
	}
	engine := dialogue.NewEngine(logger, empathy)

	var guard *dedup.Guard
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		guard = dedup.NewGuard(client, cfg.DedupTTL)
		logger.Info("inbound dedup enabled", "addr", cfg.RedisAddr)
	}

	var archive *transcript.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		archive = transcript.NewStore(pool)
		logger.Info("transcript archive enabled")
	}

	webhookMetrics := metrics.NewWebhookMetrics(nil)

	handler := webhook.NewHandler(webhook.Config{
		Logger:      logger,
		Engine:      engine,
		Repo:        repo,
		Messenger:   messenger,
		Resolver:    resolver,
		Guard:       guard,
		Archive:     archive,
		Metrics:     webhookMetrics,
		VerifyToken: cfg.VerifyToken,
		AppSecret:   cfg.AppSecret,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		WebhookHandler:     handler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowed,
		AdminJWTSecret:     cfg.AdminJWTSecret,
		AdminRateLimit:     cfg.AdminRateLimit,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
