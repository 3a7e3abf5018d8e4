package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/reviewseed/config"
	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/spacesedan/reviewseed/internal/clients/kafka_client"
	"github.com/spacesedan/reviewseed/internal/consumers"
	"github.com/spacesedan/reviewseed/internal/db"
	"github.com/spacesedan/reviewseed/internal/logging"
	"github.com/spacesedan/reviewseed/internal/monitoring"
	"github.com/spacesedan/reviewseed/internal/reviewgen"
	"github.com/spacesedan/reviewseed/internal/router"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	settings := config.Load()
	logging.InitLogger(settings.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	provider, err := clients.NewProviderClient(settings)
	if err != nil {
		slog.Error("[Main] Failed to initialize provider client",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	products, closeStore, err := db.OpenProductStore(ctx, settings)
	if err != nil {
		slog.Error("[Main] Failed to open product store",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	var ledger consumers.RunLedger = consumers.NoopLedger{}
	if settings.ValkeyAddress != "" {
		vc, err := clients.NewValkeyClient(clients.ValkeyConfig{
			Address:  settings.ValkeyAddress,
			Password: settings.ValkeyPass,
			TLS:      settings.ValkeyTLS,
		})
		if err != nil {
			slog.Error("[Main] Failed to connect to valkey",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer vc.Close()
		ledger = vc
	} else {
		slog.Warn("[Main] VALKEY_INIT_ADDRESS not set, duplicate requests will not be detected")
	}

	cfg := kafka_client.GetKafkaConfig(settings)

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(cfg)
		if err == nil {
			break
		}
		slog.Warn("[Main] Kafka producer init failed, retrying...", slog.String("error", err.Error()))
		if !wait(ctx, 5*time.Second) {
			return
		}
	}
	defer producer.Close()

	var consumer *kafka.Consumer
	for {
		consumer, err = kafka_client.NewConsumer(cfg)
		if err == nil {
			break
		}
		slog.Warn("[Main] Kafka consumer init failed, retrying...", slog.String("error", err.Error()))
		if !wait(ctx, 5*time.Second) {
			return
		}
	}
	defer consumer.Close()

	providerHealthy := &atomic.Bool{}
	providerHealthy.Store(true)
	go monitoring.MonitorProviderHealth(ctx, provider, providerHealthy)

	srv := &http.Server{
		Addr:              settings.MetricsAddr,
		Handler:           router.Setup(providerHealthy),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("[Main] Serving health and metrics", slog.String("addr", settings.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Main] Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	orchestrator := reviewgen.NewOrchestrator(provider, reviewgen.OptionsFromSettings(settings))
	handler := consumers.NewGenerationHandler(orchestrator, products, producer, ledger)

	consume := consumers.WrapConsumer(consumers.StartGenerationConsumer(handler)).
		WithHealthCheck(providerHealthy).
		Handler()
	consume(ctx, consumer)

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	_ = srv.Shutdown(shutdownCtx)
	slog.Info("[Main] Consumer stopped")
}

func wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
