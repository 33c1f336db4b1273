// Package cache connects the optional Redis instance used for rate limiting
// and readiness reporting.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ajayblog/internal/middleware"
	"ajayblog/internal/observability"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const pingTimeout = 5 * time.Second

type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Options parses a REDIS_URL. Both redis:// URLs and bare host:port
// addresses are accepted. The maintenance notifications handshake is
// disabled since most self-hosted servers reject it.
func Options(raw string) (*redis.Options, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("redis address is empty")
	}

	opts := &redis.Options{Addr: raw}
	if strings.Contains(raw, "://") {
		parsed, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		opts = parsed
	}
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}
	return opts, nil
}

// Connect returns a client for raw, or nil when raw is empty or the server
// cannot be reached. The blog runs without Redis; only rate limiting is
// lost.
func Connect(ctx context.Context, raw string) *redis.Client {
	if strings.TrimSpace(raw) == "" {
		middleware.Logger.Info("REDIS_URL not set, rate limiting disabled")
		return nil
	}

	opts, err := Options(raw)
	if err != nil {
		middleware.Logger.Warn("Redis disabled", slog.String("error", err.Error()))
		return nil
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		middleware.Logger.Warn("Redis connection failed, continuing without it",
			slog.String("addr", opts.Addr),
			slog.String("error", err.Error()),
		)
		_ = client.Close()
		return nil
	}

	middleware.Logger.Info("Redis connected successfully", slog.String("addr", opts.Addr))
	return client
}

// Ping reports Redis health for readiness checks. A nil client is not an
// error; callers decide how to report it.
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return nil
	}
	return client.Ping(ctx).Err()
}
