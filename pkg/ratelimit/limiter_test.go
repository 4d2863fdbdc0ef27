package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tgmedia/pkg/config"
)

func TestTokenBucket(t *testing.T) {
	tb := NewTokenBucket(1, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, tb.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, tb.Allow(), "burst exhausted")

	tb.Reset()
	assert.True(t, tb.Allow(), "reset restores the burst")
}

func TestTokenBucketWaitCancelled(t *testing.T) {
	tb := NewTokenBucket(0.001, 1)
	require.True(t, tb.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, tb.Wait(ctx))
}

func TestTokenBucketWait(t *testing.T) {
	tb := NewTokenBucket(100, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, tb.Wait(ctx))
	}
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestNonPositiveRateIsUnlimited(t *testing.T) {
	tb := NewTokenBucket(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, tb.Allow())
	}
}

func TestFromConfig(t *testing.T) {
	tb := FromConfig(config.RateLimitConfig{RequestsPerSecond: 2, Burst: 2})
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}

func TestUnlimited(t *testing.T) {
	var l Limiter = Unlimited{}
	assert.True(t, l.Allow())
	assert.NoError(t, l.Wait(context.Background()))
}
