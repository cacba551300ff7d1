package http

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
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/observability"
)

const pipelineSecret = "pipeline-secret"

type memRevocations struct {
	revoked map[string]bool
	err     error
}

func (m memRevocations) Exists(_ context.Context, token string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.revoked[token], nil
}

// newPipelineApp assembles the production middleware chain around a small
// route set so failures surface through the real error envelope.
func newPipelineApp(revocations auth.RevocationChecker) (*fiber.App, *auth.TokenManager) {
	tm := auth.NewTokenManager(pipelineSecret, 60)
	metrics := observability.NewMetrics()
	mw := auth.NewMiddleware(tm, revocations, zap.NewNop(), metrics)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)

	ok := func(c *fiber.Ctx) error {
		identity, _ := auth.IdentityFromContext(c)
		return c.JSON(fiber.Map{"success": true, "role": identity.Role})
	}

	api := app.Group("/api/v1")
	api.Post("/auth/change-password", mw.Handle, ok)
	api.Get("/customers/:customerId", mw.Handle, ok)
	api.Put("/customers/:customerId", mw.Handle, ok)

	return app, tm
}

func pipelineRequest(t *testing.T, app *fiber.App, method, target string, header func(*http.Request)) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if header != nil {
		header(req)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp, body
}

func bearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func TestPipelineNoToken(t *testing.T) {
	app, _ := newPipelineApp(memRevocations{})

	resp, body := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1", nil)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "No token provided", body["message"])
}

func TestPipelineInvalidToken(t *testing.T) {
	app, _ := newPipelineApp(memRevocations{})

	resp, body := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1",
		bearer("not-a-jwt"))
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Invalid token", body["message"])
}

func TestPipelineExpiredToken(t *testing.T) {
	app, _ := newPipelineApp(memRevocations{})

	claims := &auth.Claims{
		Role: domain.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "subject-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(pipelineSecret))
	require.NoError(t, err)

	resp, body := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1",
		bearer(expired))
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Token expired", body["message"])
}

func TestPipelineRevokedTokenBeforeExpiry(t *testing.T) {
	revocations := memRevocations{revoked: map[string]bool{}}
	app, tm := newPipelineApp(revocations)

	token, _, err := tm.GenerateToken("subject-1", auth.Claims{
		Role:       domain.RoleCustomer,
		CustomerID: "CUST-1",
	})
	require.NoError(t, err)

	resp, _ := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1", bearer(token))
	require.Equal(t, 200, resp.StatusCode)

	// Revocation wins even though the token is still well within its TTL.
	revocations.revoked[token] = true
	resp, body := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1", bearer(token))
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", body["message"])
}

func TestPipelineRevocationLookupFailsClosed(t *testing.T) {
	app, tm := newPipelineApp(memRevocations{err: errors.New("store down")})

	token, _, err := tm.GenerateToken("subject-1", auth.Claims{Role: domain.RoleCustomer})
	require.NoError(t, err)

	resp, body := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1", bearer(token))
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "internal server error", body["message"])
}

type ctxCapturingRevocations struct {
	captured *context.Context
}

func (r ctxCapturingRevocations) Exists(ctx context.Context, _ string) (bool, error) {
	*r.captured = ctx
	return false, nil
}

func TestPipelineRequestTimeoutReachesStores(t *testing.T) {
	tm := auth.NewTokenManager(pipelineSecret, 60)
	metrics := observability.NewMetrics()

	var captured context.Context
	mw := auth.NewMiddleware(tm, ctxCapturingRevocations{captured: &captured}, zap.NewNop(), metrics)

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	app.Get("/api/v1/customers/:customerId", mw.Handle, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})

	token, _, err := tm.GenerateToken("subject-1", auth.Claims{Role: domain.RoleCustomer})
	require.NoError(t, err)

	resp, _ := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1", bearer(token))
	require.Equal(t, 200, resp.StatusCode)

	require.NotNil(t, captured)
	deadline, ok := captured.Deadline()
	require.True(t, ok, "revocation lookup must run under the request deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, 2*time.Second)
}

func TestPipelinePasswordChangeGate(t *testing.T) {
	app, tm := newPipelineApp(memRevocations{})

	token, _, err := tm.GenerateToken("subject-1", auth.Claims{
		Role:                  domain.RoleAdministrator,
		AdminID:               "ADM-1",
		RequirePasswordChange: true,
	})
	require.NoError(t, err)

	resp, body := pipelineRequest(t, app, http.MethodPut, "/api/v1/customers/CUST-1", bearer(token))
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, true, body["requirePasswordChange"])

	// Reads and the remediation endpoint stay reachable.
	resp, _ = pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1", bearer(token))
	assert.Equal(t, 200, resp.StatusCode)

	resp, _ = pipelineRequest(t, app, http.MethodPost, "/api/v1/auth/change-password", bearer(token))
	assert.Equal(t, 200, resp.StatusCode)
}

func TestPipelineLegacyTokenHeader(t *testing.T) {
	app, tm := newPipelineApp(memRevocations{})

	token, _, err := tm.GenerateToken("subject-1", auth.Claims{Role: domain.RoleCustomer})
	require.NoError(t, err)

	resp, body := pipelineRequest(t, app, http.MethodGet, "/api/v1/customers/CUST-1",
		func(req *http.Request) {
			req.Header.Set("x-auth-token", token)
		})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, string(domain.RoleCustomer), body["role"])
}
