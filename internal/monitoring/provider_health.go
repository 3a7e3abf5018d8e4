package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_TIMER   = 15 * time.Second
	HEALTHCHECK_TIMEOUT = 5 * time.Second
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorProviderHealth keeps healthy in sync with the provider's reachability until ctx is done.
func MonitorProviderHealth(ctx context.Context, provider Pinger, healthy *atomic.Bool) {
	ticker := time.NewTicker(HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			CheckProvider(ctx, provider, healthy)
		}
	}
}

func CheckProvider(ctx context.Context, provider Pinger, healthy *atomic.Bool) bool {
	pingCtx, cancel := context.WithTimeout(ctx, HEALTHCHECK_TIMEOUT)
	defer cancel()

	err := provider.Ping(pingCtx)
	isHealthy := err == nil
	wasHealthy := healthy.Swap(isHealthy)

	switch {
	case !isHealthy:
		slog.Warn("[HealthCheck] Provider is unhealthy",
			slog.String("error", err.Error()))
	case !wasHealthy:
		slog.Info("[HealthCheck] Provider recovered")
	}
	return isHealthy
}
