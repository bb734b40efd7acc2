package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/salesdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestNilInvoiceLimiterAllows(t *testing.T) {
	var l *InvoiceLimiter
	assert.False(t, l.Enabled())

	res, err := l.AllowUser(context.Background(), "42")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestNewInvoiceLimiterDisabledByDefault(t *testing.T) {
	l, err := NewInvoiceLimiter(fxtest.NewLifecycle(t), config.Config{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestNewInvoiceLimiterValidatesConfig(t *testing.T) {
	cfg := config.Config{RateLimit: config.RateLimitConfig{Enabled: true, RedisAddr: "localhost:6379"}}
	_, err := NewInvoiceLimiter(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	assert.Error(t, err)

	cfg.RateLimit.RedisAddr = " "
	cfg.RateLimit.InvoiceRate = 1
	cfg.RateLimit.InvoiceBurst = 1
	_, err = NewInvoiceLimiter(fxtest.NewLifecycle(t), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestTokenBucketRejectsBadArguments(t *testing.T) {
	var nilBucket *TokenBucket
	_, err := nilBucket.Allow(context.Background(), "k", 1, 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestBuildResultComputesRetryAfter(t *testing.T) {
	denied := buildResult([]any{int64(0), "0.5", int64(1_700_000_000_000)}, 2, 10)
	assert.False(t, denied.Allowed)
	assert.Equal(t, 250*time.Millisecond, denied.RetryAfter)
	assert.Equal(t, 10, denied.Limit)
	assert.Equal(t, time.UnixMilli(1_700_000_000_000).Add(250*time.Millisecond), denied.ResetTime)

	allowed := buildResult([]any{int64(1), "3.75", int64(0)}, 2, 10)
	assert.True(t, allowed.Allowed)
	assert.Equal(t, 3, allowed.Remaining)
	assert.Zero(t, allowed.RetryAfter)
}

func TestDefaultBucketTTL(t *testing.T) {
	assert.Equal(t, 10*time.Second, defaultBucketTTL(2, 10))
	assert.Equal(t, time.Second, defaultBucketTTL(100, 1))
	assert.Equal(t, time.Second, defaultBucketTTL(0, 1))
}
