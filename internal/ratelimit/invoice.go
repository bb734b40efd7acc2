package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/salesdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const keyInvoiceCreateUser = "invoice:create:user:%s"

// InvoiceLimiter caps how fast one user can create invoices.
// A nil limiter allows everything.
type InvoiceLimiter struct {
	bucket *TokenBucket
	rate   float64
	burst  int
}

func NewInvoiceLimiter(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*InvoiceLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return nil, nil
	}

	addr := strings.TrimSpace(limitCfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("rate limit redis addr is required")
	}
	if limitCfg.InvoiceRate <= 0 || limitCfg.InvoiceBurst <= 0 {
		return nil, errors.New("invoice rate limit must be positive")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(limitCfg.RedisPassword),
		DB:       limitCfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("rate limit redis unreachable", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return newInvoiceLimiter(NewTokenBucket(client), limitCfg.InvoiceRate, limitCfg.InvoiceBurst), nil
}

func newInvoiceLimiter(bucket *TokenBucket, rate float64, burst int) *InvoiceLimiter {
	return &InvoiceLimiter{bucket: bucket, rate: rate, burst: burst}
}

func (l *InvoiceLimiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *InvoiceLimiter) AllowUser(ctx context.Context, userID string) (*Result, error) {
	if !l.Enabled() {
		return &Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyInvoiceCreateUser, strings.TrimSpace(userID))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
