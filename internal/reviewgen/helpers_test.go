package reviewgen

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spacesedan/reviewseed/internal/clients"
)

// stubRand always picks the first option and never reorders.
type stubRand struct {
	f float64
}

func (s stubRand) IntN(int) int                 { return 0 }
func (s stubRand) Float64() float64             { return s.f }
func (s stubRand) Shuffle(int, func(i, j int)) {}

type fakeClient struct {
	calls    atomic.Int64
	inFlight atomic.Int64
	maxSeen  atomic.Int64
	hold     time.Duration
	respond  func(call int64, req clients.CompletionRequest) (*clients.CompletionResponse, error)
}

func (f *fakeClient) Complete(_ context.Context, req clients.CompletionRequest) (*clients.CompletionResponse, error) {
	n := f.calls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if f.hold > 0 {
		time.Sleep(f.hold)
	}
	return f.respond(n, req)
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func reviewJSON(fields map[string]any) string {
	b, _ := json.Marshal(fields)
	return string(b)
}

func okResponse(text string) *clients.CompletionResponse {
	return &clients.CompletionResponse{
		HasCandidate:    true,
		FinishReason:    clients.FinishStop,
		RawFinishReason: "stop",
		Text:            text,
	}
}

func validReview() *clients.CompletionResponse {
	return okResponse(reviewJSON(map[string]any{
		"customerName": "Trần Thị Bình",
		"rating":       5,
		"title":        "Dùng ổn",
		"content":      "Giao hàng nhanh, sản phẩm đúng mô tả.",
		"isVerified":   true,
		"helpfulCount": 3,
	}))
}
