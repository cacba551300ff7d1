package quota

import (
	"context"
	"math"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/config"
	"github.com/wavemax/affiliate-program/internal/events"
	"github.com/wavemax/affiliate-program/internal/observability"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

// Limiter enforces per-category request quotas at request ingress. Quota
// checks always run before authentication in the middleware chain.
type Limiter struct {
	shared     Store
	local      *LocalStore
	prefix     string
	enabled    bool
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewLimiter builds the quota layer over a shared Redis store. When the
// store cannot be reached at construction the limiter degrades to the
// process-local fallback instead of blocking all requests. The layer is
// bypassed entirely under the test execution mode.
func NewLimiter(ctx context.Context, client *redis.Client, cfg config.QuotaConfig, testMode bool, dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *Limiter {
	l := &Limiter{
		local:      NewLocalStore(ctx),
		prefix:     cfg.KeyPrefix,
		enabled:    cfg.Enabled && !testMode,
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}

	if client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("quota store unreachable; degrading to process-local counters", zap.Error(err))
		} else {
			l.shared = NewRedisStore(client)
		}
	} else {
		logger.Warn("no quota store configured; using process-local counters")
	}

	return l
}

// Middleware returns the Fiber handler enforcing the given category.
func (l *Limiter) Middleware(cat Category) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.enabled {
			return c.Next()
		}
		if cat.Skip != nil && cat.Skip(c) {
			return c.Next()
		}

		catKey := cat.key(c)
		key := l.prefix + ":" + cat.Name + ":" + catKey
		decision, admitted := l.allow(c.UserContext(), key, cat)
		if !decision.Allowed {
			l.metrics.RecordQuotaRejection(cat.Name)
			retryAfter := retryAfterSeconds(decision)
			l.publish(c.UserContext(), events.NewEvent(events.EventQuotaExceeded, catKey,
				map[string]any{"category": cat.Name, "retryAfter": retryAfter}))
			return apperrors.NewQuotaExceeded(cat.Message, retryAfter)
		}

		err := c.Next()

		if cat.SkipSuccessful && err == nil && c.Response().StatusCode() < fiber.StatusBadRequest {
			l.refund(c.UserContext(), key, admitted)
		}
		return err
	}
}

// allow consults the shared store first and reports which store admitted the
// request, so a refund never targets a store that was not incremented.
func (l *Limiter) allow(ctx context.Context, key string, cat Category) (Decision, Store) {
	if l.shared != nil {
		decision, err := l.shared.Allow(ctx, key, cat.Window, cat.Max)
		if err == nil {
			return decision, l.shared
		}
		l.logger.Warn("shared quota store error; consulting local fallback", zap.Error(err))
	}

	decision, _ := l.local.Allow(ctx, key, cat.Window, cat.Max)
	return decision, l.local
}

func (l *Limiter) refund(ctx context.Context, key string, store Store) {
	if store == nil {
		return
	}
	if err := store.Refund(ctx, key); err != nil {
		l.logger.Warn("quota refund failed", zap.Error(err))
	}
}

func (l *Limiter) publish(ctx context.Context, event events.Event) {
	if l.dispatcher != nil {
		_ = l.dispatcher.Publish(ctx, event)
	}
}

func retryAfterSeconds(d Decision) int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
