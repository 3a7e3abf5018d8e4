package reviewgen

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/spacesedan/reviewseed/internal/models"
)

type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
	JitterMax  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		Base:       time.Second,
		JitterMax:  500 * time.Millisecond,
	}
}

// Delay is the wait before retry n (1-based): the provider hint is a floor on the linear backoff and jitter
// is always added.
func (p RetryPolicy) Delay(n int, retryAfter time.Duration, r Rand) time.Duration {
	d := time.Duration(n) * p.Base
	if retryAfter > d {
		d = retryAfter
	}
	return d + jitter(r, p.JitterMax)
}

// Unit is one review to generate.
type Unit struct {
	Index   int
	Product models.Product
	Target  int
	Hint    string
}

type RetryController struct {
	client    clients.CompletionClient
	validator *ResponseValidator
	policy    RetryPolicy
	rand      Rand
	sleep     Sleeper
}

func NewRetryController(client clients.CompletionClient, validator *ResponseValidator, policy RetryPolicy, r Rand, sleep Sleeper) *RetryController {
	if sleep == nil {
		sleep = sleepContext
	}
	return &RetryController{
		client:    client,
		validator: validator,
		policy:    policy,
		rand:      r,
		sleep:     sleep,
	}
}

// Run returns the first valid review, or the last classified error once retries are exhausted or the error
// is not retryable.
func (rc *RetryController) Run(ctx context.Context, unit Unit) (models.ReviewRecord, *ClassifiedError) {
	req := newCompletionRequest(unit.Product, unit.Target, unit.Hint)
	attempts := rc.policy.MaxRetries + 1

	var lastErr *ClassifiedError
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		record, cerr := rc.attempt(ctx, req, unit.Target)
		attemptsTotal.WithLabelValues(outcomeLabel(cerr)).Inc()
		if cerr == nil {
			slog.Debug("[RetryController] Generated review",
				slog.Int("unit", unit.Index),
				slog.Int("target_rating", unit.Target),
				slog.Int("attempt", attempt),
				slog.Duration("elapsed", time.Since(start)))
			return record, nil
		}
		lastErr = cerr

		slog.Warn("[RetryController] Review generation failed",
			slog.Int("unit", unit.Index),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.String("type", cerr.Kind.String()),
			slog.String("error", cerr.Message),
			slog.Bool("retryable", cerr.Retryable))

		if !cerr.Retryable || attempt == attempts {
			break
		}

		delay := rc.policy.Delay(attempt, cerr.RetryAfter, rc.rand)
		slog.Info("[RetryController] Retrying review generation",
			slog.Int("unit", unit.Index),
			slog.Int("retry", attempt),
			slog.Duration("delay", delay))
		if err := rc.sleep(ctx, delay); err != nil {
			break
		}
	}

	return models.ReviewRecord{}, lastErr
}

func (rc *RetryController) attempt(ctx context.Context, req clients.CompletionRequest, target int) (models.ReviewRecord, *ClassifiedError) {
	resp, err := rc.client.Complete(ctx, req)
	if err != nil {
		return models.ReviewRecord{}, Classify(err)
	}
	return rc.validator.Validate(resp, target)
}
