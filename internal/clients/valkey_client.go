package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spacesedan/reviewseed/internal/models"
	"github.com/valkey-io/valkey-go"
)

const (
	VALKEY_PROCESSED_KEY    = "reviewseed:processed_requests"
	VALKEY_RUN_KEY_PREFIX   = "reviewseed:run:"
	VALKEY_PRODUCT_RUNS     = "reviewseed:product_runs:"
	VALKEY_PROCESSED_TTL    = 86400
	VALKEY_RUN_TTL          = 7 * 86400
	VALKEY_RUNS_PER_PRODUCT = 50
)

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

type ValkeyClient struct {
	Client valkey.Client
	cfg    ValkeyConfig
	mu     sync.Mutex
}

func newValkey(cfg ValkeyConfig) (valkey.Client, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			cfg.Address,
		},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}

	if cfg.TLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	return client, nil
}

func NewValkeyClient(cfg ValkeyConfig) (*ValkeyClient, error) {
	client, err := newValkey(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", cfg.Address))
	return &ValkeyClient{Client: client, cfg: cfg}, nil
}

func (vc *ValkeyClient) recreateClient() {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	slog.Warn("[ValkeyClient] Attempting to recreate Valkey client...")
	client, err := newValkey(vc.cfg)
	if err != nil {
		slog.Error("[ValkeyClient] Recreate failed",
			slog.String("error", err.Error()))
		return
	}

	vc.Client.Close()
	vc.Client = client
	slog.Info("[ValkeyClient] Successfully reconnected to valkey")
}

func (vc *ValkeyClient) Close() {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	vc.Client.Close()
}

func (vc *ValkeyClient) client() valkey.Client {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	return vc.Client
}

// MarkProcessed remembers a handled request id for a day so redelivered messages are skipped.
func (vc *ValkeyClient) MarkProcessed(ctx context.Context, requestID string) error {
	build := func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Sadd().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build(),
			c.B().Expire().Key(VALKEY_PROCESSED_KEY).Seconds(VALKEY_PROCESSED_TTL).Build(),
		}
	}

	for _, res := range vc.DoMultiWithRetry(ctx, build, MAX_RETRIES) {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Info("[ValkeyClient] Request marked as processed",
		slog.String("request_id", requestID))
	return nil
}

func (vc *ValkeyClient) IsProcessed(ctx context.Context, requestID string) bool {
	res := vc.DoWithRetry(ctx, func(c valkey.Client) valkey.Completed {
		return c.B().Sismember().Key(VALKEY_PROCESSED_KEY).Member(requestID).Build()
	}, MAX_RETRIES)

	ok, err := res.AsBool()
	if err != nil {
		return false
	}
	return ok
}

// RecordRun stores the run summary and indexes it under the product.
func (vc *ValkeyClient) RecordRun(ctx context.Context, productID, runID string, summary models.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to marshal run summary: %w", err)
	}

	runKey := VALKEY_RUN_KEY_PREFIX + runID
	productKey := VALKEY_PRODUCT_RUNS + productID
	build := func(c valkey.Client) []valkey.Completed {
		return []valkey.Completed{
			c.B().Set().Key(runKey).Value(string(payload)).ExSeconds(VALKEY_RUN_TTL).Build(),
			c.B().Lpush().Key(productKey).Element(runID).Build(),
			c.B().Ltrim().Key(productKey).Start(0).Stop(VALKEY_RUNS_PER_PRODUCT - 1).Build(),
			c.B().Expire().Key(productKey).Seconds(VALKEY_RUN_TTL).Build(),
		}
	}

	for _, res := range vc.DoMultiWithRetry(ctx, build, MAX_RETRIES) {
		if err := res.Error(); err != nil {
			return err
		}
	}

	slog.Info("[ValkeyClient] Recorded generation run",
		slog.String("run_id", runID),
		slog.String("product_id", productID))
	return nil
}

// build is called once per attempt; a completed command must not be sent twice.
func (vc *ValkeyClient) DoMultiWithRetry(ctx context.Context, build func(valkey.Client) []valkey.Completed, retries int) []valkey.ValkeyResult {
	var results []valkey.ValkeyResult

	for i := 0; i < retries; i++ {
		c := vc.client()
		results = c.DoMulti(ctx, build(c)...)
		hasErr := false
		for _, r := range results {
			if r.Error() != nil {
				hasErr = true
				slog.Warn("[ValkeyClient] Do Multi failed",
					slog.Int("attempt", i+1),
					slog.String("error", r.Error().Error()))
				if isConnectionError(r.Error()) {
					vc.recreateClient()
				}
				break
			}
		}
		if !hasErr {
			break
		}
		time.Sleep(INITIAL_BACKOFF)
	}

	return results
}

func (vc *ValkeyClient) DoWithRetry(ctx context.Context, build func(valkey.Client) valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		c := vc.client()
		result = c.Do(ctx, build(c))
		if result.Error() == nil {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))
		if isConnectionError(result.Error()) {
			vc.recreateClient()
		}

		time.Sleep(INITIAL_BACKOFF)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
