package reviewgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spacesedan/reviewseed/config"
	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/spacesedan/reviewseed/internal/models"
	"github.com/spacesedan/reviewseed/internal/utils"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	BatchSize  int
	GroupDelay time.Duration
	JitterMax  time.Duration
	Retry      RetryPolicy

	// Rand and Sleep are optional; a time-seeded source and a real timer are used when nil.
	Rand  Rand
	Sleep Sleeper
}

func DefaultOptions() Options {
	return Options{
		BatchSize:  5,
		GroupDelay: time.Second,
		JitterMax:  500 * time.Millisecond,
		Retry:      DefaultRetryPolicy(),
	}
}

func OptionsFromSettings(s config.Settings) Options {
	return Options{
		BatchSize:  s.BatchSize,
		GroupDelay: s.GroupDelay,
		JitterMax:  s.JitterMax,
		Retry: RetryPolicy{
			MaxRetries: s.MaxRetries,
			Base:       s.RetryBase,
			JitterMax:  s.JitterMax,
		},
	}
}

type Orchestrator struct {
	opts      Options
	rand      Rand
	sleep     Sleeper
	validate  *validator.Validate
	sampler   *Sampler
	fallbacks *FallbackSynthesizer
	retry     *RetryController
}

func NewOrchestrator(client clients.CompletionClient, opts Options) *Orchestrator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	r := opts.Rand
	if r == nil {
		r = newTimeSeededRand()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &Orchestrator{
		opts:      opts,
		rand:      r,
		sleep:     sleep,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sampler:   NewSampler(r),
		fallbacks: NewFallbackSynthesizer(r),
		retry:     NewRetryController(client, NewResponseValidator(r), opts.Retry, r, sleep),
	}
}

// Generate produces req.Quantity reviews for product. Only pre-flight problems are returned as errors; unit
// failures become fallback records. When ctx is cancelled between groups the partial result is returned along
// with ctx.Err().
func (o *Orchestrator) Generate(ctx context.Context, req models.GenerationRequest, product *models.Product) (*models.BatchResult, error) {
	if err := o.preflight(req, product); err != nil {
		slog.Error("[Orchestrator] Rejected generation request",
			slog.String("product_id", req.ProductID),
			slog.Int("quantity", req.Quantity),
			slog.String("error", err.Error()))
		return nil, err
	}

	targets, err := o.sampler.Sample(req.Quantity, req.RatingDistribution)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	runID := uuid.NewString()
	groups := utils.Chunk(targets, o.opts.BatchSize)
	produced := utils.NewBatchBuffer[models.ReviewRecord](len(targets))

	slog.Info("[Orchestrator] Starting review generation",
		slog.String("run_id", runID),
		slog.String("product_id", product.ID),
		slog.Int("quantity", req.Quantity),
		slog.Int("groups", len(groups)))

	var cancelErr error
	index := 0
	for g, group := range groups {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}

		o.runGroup(ctx, runID, *product, group, index, req.CustomPrompt, produced)
		index += len(group)

		if g < len(groups)-1 {
			delay := o.opts.GroupDelay + jitter(o.rand, o.opts.JitterMax)
			if err := o.sleep(ctx, delay); err != nil {
				cancelErr = err
				break
			}
		}
	}

	produced.LogBatchProcessing("review_records")
	records := produced.GetAndClear()
	if records == nil {
		records = []models.ReviewRecord{}
	}
	for _, r := range records {
		unitsTotal.WithLabelValues(ProvenanceOf(r.Title).String()).Inc()
	}

	summary := Summarize(req.Quantity, records)
	result := &models.BatchResult{
		RunID:            runID,
		ProductID:        product.ID,
		Requested:        req.Quantity,
		Produced:         records,
		Summary:          summary,
		Success:          len(records) > 0,
		Message:          summaryMessage(summary),
		HasErrors:        summary.ErrorTaggedCount > 0,
		IsPartialSuccess: len(records) < req.Quantity,
		Cancelled:        cancelErr != nil,
	}

	runsTotal.WithLabelValues(summary.QualitativeStatus).Inc()
	runDuration.Observe(time.Since(start).Seconds())

	slog.Info("[Orchestrator] Review generation summary",
		slog.String("run_id", runID),
		slog.Int("requested", summary.Requested),
		slog.Int("generated", summary.Generated),
		slog.Int("model_generated", summary.ModelGenerated),
		slog.Int("fallback", summary.FallbackCount),
		slog.Int("errors", summary.ErrorTaggedCount),
		slog.Int("success_rate", summary.SuccessRatePercent),
		slog.String("status", summary.QualitativeStatus),
		slog.Bool("cancelled", result.Cancelled),
		slog.Duration("elapsed", time.Since(start)))

	if cancelErr != nil {
		return result, fmt.Errorf("[Orchestrator] generation cancelled after %d/%d reviews: %w",
			len(records), req.Quantity, cancelErr)
	}
	return result, nil
}

// runGroup fans out one group. Units never fail the group, so sibling units are never cancelled.
func (o *Orchestrator) runGroup(ctx context.Context, runID string, product models.Product, group []int, offset int, hint string, out *utils.BatchBuffer[models.ReviewRecord]) {
	unitCtx := context.WithoutCancel(ctx)

	var eg errgroup.Group
	eg.SetLimit(len(group))
	for i, target := range group {
		unit := Unit{
			Index:   offset + i,
			Product: product,
			Target:  target,
			Hint:    hint,
		}
		eg.Go(func() error {
			record, cerr := o.retry.Run(unitCtx, unit)
			if cerr != nil {
				slog.Warn("[Orchestrator] Using fallback review",
					slog.String("run_id", runID),
					slog.Int("unit", unit.Index),
					slog.Int("target_rating", unit.Target),
					slog.String("type", cerr.Kind.String()))
				record = o.fallbacks.Synthesize(unit.Target, FallbackTag(cerr.Kind))
			}
			out.Add(record)
			return nil
		})
	}
	_ = eg.Wait()
}

func (o *Orchestrator) preflight(req models.GenerationRequest, product *models.Product) error {
	if product == nil {
		return newError(KindValidation, "Product not found", nil)
	}

	if err := o.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return newError(KindValidation, validationMessage(fieldErrs[0]), err)
		}
		return newError(KindValidation, err.Error(), err)
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.StructField() {
	case "Quantity":
		return fmt.Sprintf("Quantity must be between %d and %d reviews", MinQuantity, MaxQuantity)
	case "ProductID":
		return "Product ID is required"
	case "Star5", "Star4", "Star3", "Star2", "Star1":
		return invalidDistributionMsg
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}
