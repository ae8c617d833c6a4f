package ratelimiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketBurst(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	assert.True(t, tb.TakeToken())
	assert.True(t, tb.TakeToken())
	assert.False(t, tb.TakeToken())
}

func TestTokenBucketNormalisesInput(t *testing.T) {
	tb := NewTokenBucket(0, -5)
	assert.True(t, tb.TakeToken())
}

func TestWaitHonoursContext(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.TakeToken())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, tb.Wait(ctx))
}

func TestUnlimited(t *testing.T) {
	var rl RateLimiter = Unlimited{}
	assert.True(t, rl.TakeToken())
	assert.NoError(t, rl.Wait(context.Background()))
}
