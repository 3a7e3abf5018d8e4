package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckProvider(t *testing.T) {
	healthy := &atomic.Bool{}
	healthy.Store(true)

	down := pingFunc(func(context.Context) error { return errors.New("dial tcp: i/o timeout") })
	assert.False(t, CheckProvider(context.Background(), down, healthy))
	assert.False(t, healthy.Load())

	up := pingFunc(func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	assert.True(t, CheckProvider(context.Background(), up, healthy))
	assert.True(t, healthy.Load())
}
