package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

func newHealthContext(t *testing.T) *ServerContext {
	t.Helper()
	sc, err := NewServerContext(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLivenessHandlerAlwaysOK(t *testing.T) {
	h := NewHealthChecker(newHealthContext(t))

	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, healthStatusOK, decodeHealth(t, rec).Status)
}

func TestReadinessNotReadyBeforeRegistration(t *testing.T) {
	h := NewHealthChecker(newHealthContext(t))

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, healthStatusNotReady, resp.Status)
	assert.Equal(t, healthStatusNotReady, resp.Checks["ready"])
	// The wired dependencies are fine; only registration is pending.
	assert.Equal(t, healthStatusOK, resp.Checks["credential_store"])
	assert.Equal(t, healthStatusOK, resp.Checks["adapters"])
}

func TestReadinessReadyAfterSetReady(t *testing.T) {
	h := NewHealthChecker(newHealthContext(t))
	h.SetReady(true)
	assert.True(t, h.IsReady())

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, healthStatusOK, resp.Status)
	assert.Equal(t, healthStatusOK, resp.Checks["shutdown"])
}

func TestReadinessFailsWithoutDependencies(t *testing.T) {
	h := NewHealthChecker(nil)
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "unavailable", resp.Checks["credential_store"])
	assert.Equal(t, "none registered", resp.Checks["adapters"])
}

func TestReadinessFailsDuringShutdown(t *testing.T) {
	sc := newHealthContext(t)
	h := NewHealthChecker(sc)
	h.SetReady(true)

	require.NoError(t, sc.Shutdown())

	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, healthStatusShuttingDown, decodeHealth(t, rec).Checks["shutdown"])
}

func TestDetailedHealthReportsAccountsAndProviders(t *testing.T) {
	cfg := testConfig(t)
	seedAccount(t, cfg, "jane@example.com", mailbox.ProviderGmail)
	sc, err := NewServerContext(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	h := NewHealthChecker(sc)
	h.SetReady(true)

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp DetailedHealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, healthStatusOK, resp.Status)
	assert.Equal(t, 1, resp.Accounts)
	assert.Equal(t, []string{"gmail", "outlook"}, resp.Providers)
	assert.NotEmpty(t, resp.Uptime)
}
