package consumers

import (
	"context"

	"github.com/spacesedan/reviewseed/internal/models"
)

// RunLedger remembers handled requests and finished runs. *clients.ValkeyClient satisfies it.
type RunLedger interface {
	IsProcessed(ctx context.Context, requestID string) bool
	MarkProcessed(ctx context.Context, requestID string) error
	RecordRun(ctx context.Context, productID, runID string, summary models.RunSummary) error
}

// NoopLedger is used when no valkey address is configured. Every request is treated as new.
type NoopLedger struct{}

func (NoopLedger) IsProcessed(context.Context, string) bool { return false }

func (NoopLedger) MarkProcessed(context.Context, string) error { return nil }

func (NoopLedger) RecordRun(context.Context, string, string, models.RunSummary) error { return nil }
