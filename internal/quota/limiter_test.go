package quota

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/config"
	"github.com/wavemax/affiliate-program/internal/events"
	"github.com/wavemax/affiliate-program/internal/observability"
	apperrors "github.com/wavemax/affiliate-program/pkg/util"
)

func newTestLimiter(t *testing.T, testMode bool) (*Limiter, *observability.Metrics) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	metrics := observability.NewMetrics()
	limiter := NewLimiter(ctx, nil, config.QuotaConfig{Enabled: true, KeyPrefix: "quota"},
		testMode, nil, zap.NewNop(), metrics)
	return limiter, metrics
}

func newQuotaApp(limiter *Limiter, cat Category) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			body := fiber.Map{"success": false, "message": de.Message}
			for k, v := range de.Details {
				body[k] = v
			}
			return c.Status(de.HTTPStatus).JSON(body)
		},
	})
	app.Get("/t", limiter.Middleware(cat), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func get(t *testing.T, app *fiber.App) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/t", nil))
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp, body
}

func TestLimiterRejectsOverBudget(t *testing.T) {
	limiter, metrics := newTestLimiter(t, false)
	cat := Category{
		Name:    "test-budget",
		Window:  time.Minute,
		Max:     2,
		Message: "Too many requests, please try again later",
	}
	app := newQuotaApp(limiter, cat)

	for i := 0; i < 2; i++ {
		resp, _ := get(t, app)
		require.Equal(t, 200, resp.StatusCode, "request %d within budget", i+1)
	}

	resp, body := get(t, app)
	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, cat.Message, body["message"])

	retryAfter, ok := body["retryAfter"].(float64)
	require.True(t, ok, "retryAfter missing from body: %v", body)
	assert.GreaterOrEqual(t, retryAfter, float64(1))

	assert.Equal(t, int64(1), metrics.QuotaRejections("test-budget"))
}

func TestLimiterWindowRecovery(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	cat := Category{
		Name:    "test-recovery",
		Window:  200 * time.Millisecond,
		Max:     1,
		Message: "Too many requests, please try again later",
	}
	app := newQuotaApp(limiter, cat)

	resp, _ := get(t, app)
	require.Equal(t, 200, resp.StatusCode)

	resp, _ = get(t, app)
	require.Equal(t, 429, resp.StatusCode)

	time.Sleep(250 * time.Millisecond)

	resp, _ = get(t, app)
	assert.Equal(t, 200, resp.StatusCode, "quota should recover after the window elapses")
}

func TestLimiterTestModeBypass(t *testing.T) {
	limiter, metrics := newTestLimiter(t, true)
	cat := Category{
		Name:    "test-bypass",
		Window:  time.Minute,
		Max:     1,
		Message: "Too many requests, please try again later",
	}
	app := newQuotaApp(limiter, cat)

	for i := 0; i < 5; i++ {
		resp, _ := get(t, app)
		assert.Equal(t, 200, resp.StatusCode)
	}
	assert.Equal(t, int64(0), metrics.QuotaRejections("test-bypass"))
}

func TestLimiterCategorySkip(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	cat := Category{
		Name:    "test-skip",
		Window:  time.Minute,
		Max:     1,
		Message: "Too many requests, please try again later",
		Skip:    func(*fiber.Ctx) bool { return true },
	}
	app := newQuotaApp(limiter, cat)

	for i := 0; i < 5; i++ {
		resp, _ := get(t, app)
		assert.Equal(t, 200, resp.StatusCode)
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	cat := Category{
		Name:    "test-keys",
		Window:  time.Minute,
		Max:     1,
		Message: "Too many requests, please try again later",
		Key: func(c *fiber.Ctx) string {
			return c.Get("x-test-key")
		},
	}
	app := newQuotaApp(limiter, cat)

	send := func(key string) int {
		req := httptest.NewRequest(http.MethodGet, "/t", nil)
		req.Header.Set("x-test-key", key)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 200, send("alpha"))
	assert.Equal(t, 429, send("alpha"))
	assert.Equal(t, 200, send("beta"), "exhausting one key must not affect another")
}

type countingStore struct {
	allows   int
	refunds  int
	deny     bool
	allowErr error
}

func (s *countingStore) Allow(context.Context, string, time.Duration, int) (Decision, error) {
	s.allows++
	if s.allowErr != nil {
		return Decision{}, s.allowErr
	}
	if s.deny {
		return Decision{Allowed: false, RetryAfter: time.Second}, nil
	}
	return Decision{Allowed: true}, nil
}

func (s *countingStore) Refund(context.Context, string) error {
	s.refunds++
	return nil
}

func TestLimiterRefundsSuccessfulRequests(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	store := &countingStore{}
	limiter.shared = store

	cat := Category{
		Name:           "test-refund",
		Window:         time.Minute,
		Max:            5,
		Message:        "Too many attempts, please try again later",
		SkipSuccessful: true,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"success": false, "message": de.Message})
		},
	})
	app.Get("/ok", limiter.Middleware(cat), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	app.Get("/denied", limiter.Middleware(cat), func(c *fiber.Ctx) error {
		return apperrors.NewUnauthorized("Invalid email or password")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, store.allows)
	assert.Equal(t, 1, store.refunds, "successful request should be refunded")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/denied", nil))
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, 2, store.allows)
	assert.Equal(t, 1, store.refunds, "failed request must keep consuming quota")
}

func TestLimiterRefundTargetsAdmittingStore(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	shared := &countingStore{allowErr: errors.New("connection refused")}
	limiter.shared = shared

	cat := Category{
		Name:           "test-fallback-refund",
		Window:         time.Minute,
		Max:            5,
		Message:        "Too many attempts, please try again later",
		SkipSuccessful: true,
	}
	app := newQuotaApp(limiter, cat)

	resp, _ := get(t, app)
	require.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, 1, shared.allows)
	assert.Equal(t, 0, shared.refunds,
		"refund must go to the store that admitted the request, not the failed shared store")
}

func TestLimiterPublishesQuotaExceeded(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	limiter.shared = &countingStore{deny: true}

	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	dispatcher.Subscribe(events.EventQuotaExceeded, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})
	limiter.dispatcher = dispatcher

	cat := Category{
		Name:    "test-events",
		Window:  time.Minute,
		Max:     1,
		Message: "Too many requests, please try again later",
	}
	app := newQuotaApp(limiter, cat)

	resp, _ := get(t, app)
	require.Equal(t, 429, resp.StatusCode)

	require.Len(t, published, 1)
	assert.Equal(t, "test-events", published[0].Payload["category"])
	retryAfter, ok := published[0].Payload["retryAfter"].(int)
	require.True(t, ok)
	assert.GreaterOrEqual(t, retryAfter, 1)
}

func TestLocalStoreAllow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewLocalStore(ctx)

	for i := 0; i < 3; i++ {
		decision, err := store.Allow(ctx, "k", time.Minute, 3)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
	}

	decision, err := store.Allow(ctx, "k", time.Minute, 3)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Greater(t, decision.RetryAfter, time.Duration(0))

	assert.NoError(t, store.Refund(ctx, "k"))
}
