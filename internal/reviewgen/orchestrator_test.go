package reviewgen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spacesedan/reviewseed/internal/clients"
	"github.com/spacesedan/reviewseed/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProduct = &models.Product{
	ID:               "prod-42",
	Name:             "Tai nghe không dây",
	ShortDescription: "Pin 30 giờ, chống ồn",
}

func newTestOrchestrator(client clients.CompletionClient, sleeps *sleepRecorder) *Orchestrator {
	opts := DefaultOptions()
	opts.Rand = NewRand(11)
	opts.Sleep = sleeps.Sleep
	return NewOrchestrator(client, opts)
}

func alwaysValid() *fakeClient {
	return &fakeClient{respond: func(int64, clients.CompletionRequest) (*clients.CompletionResponse, error) {
		return validReview(), nil
	}}
}

func ratingCounts(records []models.ReviewRecord) [6]int {
	var counts [6]int
	for _, r := range records {
		counts[r.Rating]++
	}
	return counts
}

func TestGenerate_RejectsBadRequestsWithoutCalls(t *testing.T) {
	tests := []struct {
		name    string
		req     models.GenerationRequest
		product *models.Product
		msg     string
	}{
		{"zero quantity", models.GenerationRequest{ProductID: "prod-42", Quantity: 0}, testProduct, "Quantity must be between 1 and 50 reviews"},
		{"too many", models.GenerationRequest{ProductID: "prod-42", Quantity: 51}, testProduct, "Quantity must be between 1 and 50 reviews"},
		{"missing product id", models.GenerationRequest{Quantity: 3}, testProduct, "Product ID is required"},
		{"unknown product", models.GenerationRequest{ProductID: "prod-42", Quantity: 3}, nil, "Product not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := alwaysValid()
			o := newTestOrchestrator(client, &sleepRecorder{})

			result, err := o.Generate(context.Background(), tt.req, tt.product)

			require.Error(t, err)
			assert.Nil(t, result)
			var ce *ClassifiedError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, KindValidation, ce.Kind)
			assert.Equal(t, tt.msg, ce.Message)
			assert.Zero(t, client.calls.Load())
		})
	}
}

func TestGenerate_AllSucceed(t *testing.T) {
	client := alwaysValid()
	sleeps := &sleepRecorder{}
	o := newTestOrchestrator(client, sleeps)

	result, err := o.Generate(context.Background(), models.GenerationRequest{ProductID: "prod-42", Quantity: 12}, testProduct)

	require.NoError(t, err)
	require.Len(t, result.Produced, 12)
	assert.Equal(t, BucketCounts(12, models.DefaultRatingDistribution), ratingCounts(result.Produced))
	assert.EqualValues(t, 12, client.calls.Load())
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "prod-42", result.ProductID)
	assert.True(t, result.Success)
	assert.False(t, result.HasErrors)
	assert.False(t, result.IsPartialSuccess)
	assert.False(t, result.Cancelled)
	assert.Equal(t, 12, result.Summary.ModelGenerated)
	assert.Equal(t, 100, result.Summary.SuccessRatePercent)
	assert.Equal(t, StatusExcellent, result.Summary.QualitativeStatus)

	// three groups, so two pauses
	delays := sleeps.Delays()
	require.Len(t, delays, 2)
	for _, d := range delays {
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 1500*time.Millisecond)
	}
}

func TestGenerate_CustomDistribution(t *testing.T) {
	o := newTestOrchestrator(alwaysValid(), &sleepRecorder{})
	dist := models.RatingDistribution{Star5: 0, Star4: 0, Star3: 0, Star2: 50, Star1: 50}

	result, err := o.Generate(context.Background(),
		models.GenerationRequest{ProductID: "prod-42", Quantity: 7, RatingDistribution: &dist}, testProduct)

	require.NoError(t, err)
	assert.Equal(t, BucketCounts(7, dist), ratingCounts(result.Produced))
	for _, r := range result.Produced {
		assert.LessOrEqual(t, r.Rating, 2)
	}
}

func TestGenerate_TransientFailuresBecomeFallbacks(t *testing.T) {
	client := &fakeClient{respond: func(int64, clients.CompletionRequest) (*clients.CompletionResponse, error) {
		return nil, &clients.ProviderError{Provider: "test", StatusCode: 503, Message: "Service Unavailable"}
	}}
	o := newTestOrchestrator(client, &sleepRecorder{})

	result, err := o.Generate(context.Background(), models.GenerationRequest{ProductID: "prod-42", Quantity: 3}, testProduct)

	require.NoError(t, err)
	require.Len(t, result.Produced, 3)
	assert.EqualValues(t, 9, client.calls.Load())
	for _, r := range result.Produced {
		assert.Contains(t, r.Title, "[RATE_LIMIT]")
	}
	assert.Equal(t, 3, result.Summary.FallbackCount)
	assert.Equal(t, 0, result.Summary.ModelGenerated)
	assert.Equal(t, StatusPoor, result.Summary.QualitativeStatus)
	assert.True(t, result.Success)
	assert.False(t, result.HasErrors)
}

func TestGenerate_PermanentFailuresAreErrorTagged(t *testing.T) {
	client := &fakeClient{respond: func(int64, clients.CompletionRequest) (*clients.CompletionResponse, error) {
		return okResponse(`{"customerName":"An","title":"Tốt"}`), nil
	}}
	o := newTestOrchestrator(client, &sleepRecorder{})

	result, err := o.Generate(context.Background(), models.GenerationRequest{ProductID: "prod-42", Quantity: 2}, testProduct)

	require.NoError(t, err)
	assert.EqualValues(t, 2, client.calls.Load())
	for _, r := range result.Produced {
		assert.Contains(t, r.Title, "[ERROR: VALIDATION_ERROR]")
	}
	assert.Equal(t, 2, result.Summary.ErrorTaggedCount)
	assert.True(t, result.HasErrors)
	assert.Equal(t, "Generated 2/2 Vietnamese reviews: 0 AI-generated, 0 fallback, 2 errors (0% success rate)", result.Message)
}

func TestGenerate_BoundsConcurrency(t *testing.T) {
	client := alwaysValid()
	client.hold = 20 * time.Millisecond
	o := newTestOrchestrator(client, &sleepRecorder{})

	result, err := o.Generate(context.Background(), models.GenerationRequest{ProductID: "prod-42", Quantity: 17}, testProduct)

	require.NoError(t, err)
	assert.Len(t, result.Produced, 17)
	assert.LessOrEqual(t, client.maxSeen.Load(), int64(5))
}

func TestGenerate_CancelledBetweenGroups(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := alwaysValid()
	opts := DefaultOptions()
	opts.Rand = NewRand(5)
	opts.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}
	o := NewOrchestrator(client, opts)

	result, err := o.Generate(ctx, models.GenerationRequest{ProductID: "prod-42", Quantity: 12}, testProduct)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.NotNil(t, result)
	assert.True(t, result.Cancelled)
	assert.Len(t, result.Produced, 5)
	assert.EqualValues(t, 5, client.calls.Load())
	assert.True(t, result.IsPartialSuccess)
	assert.Equal(t, 12, result.Summary.Requested)
}

func TestGenerate_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := alwaysValid()
	o := newTestOrchestrator(client, &sleepRecorder{})

	result, err := o.Generate(ctx, models.GenerationRequest{ProductID: "prod-42", Quantity: 4}, testProduct)

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, result.Cancelled)
	assert.False(t, result.Success)
	assert.Empty(t, result.Produced)
	assert.Zero(t, client.calls.Load())
}

func TestGenerate_RejectsOutOfRangeDistribution(t *testing.T) {
	client := alwaysValid()
	o := newTestOrchestrator(client, &sleepRecorder{})

	for _, dist := range []models.RatingDistribution{
		{Star5: 1e20},
		{Star5: 150},
		{Star4: -5, Star1: 100},
	} {
		result, err := o.Generate(context.Background(),
			models.GenerationRequest{ProductID: "prod-42", Quantity: 10, RatingDistribution: &dist}, testProduct)

		assert.Nil(t, result)
		var ce *ClassifiedError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, KindValidation, ce.Kind)
		assert.Equal(t, invalidDistributionMsg, ce.Message)
	}
	assert.Zero(t, client.calls.Load())
}

func TestGenerate_ModelTitlesCannotClaimErrorProvenance(t *testing.T) {
	client := &fakeClient{respond: func(int64, clients.CompletionRequest) (*clients.CompletionResponse, error) {
		return okResponse(`{"customerName":"An","title":"Hay lắm [ERROR: không","content":"Dùng ổn"}`), nil
	}}
	o := newTestOrchestrator(client, &sleepRecorder{})

	result, err := o.Generate(context.Background(), models.GenerationRequest{ProductID: "prod-42", Quantity: 2}, testProduct)

	require.NoError(t, err)
	assert.EqualValues(t, 2, client.calls.Load())
	assert.Equal(t, 2, result.Summary.ModelGenerated)
	assert.Equal(t, 0, result.Summary.ErrorTaggedCount)
	assert.Equal(t, 100, result.Summary.SuccessRatePercent)
	assert.False(t, result.HasErrors)
}
