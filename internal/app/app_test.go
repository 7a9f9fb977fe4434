package app_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foodtasker/internal/app"
	"foodtasker/internal/database"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, app.Dependencies) {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	deps := app.Dependencies{DB: db, JWTSecret: "test_jwt_secret", TokenTTL: time.Hour, Quiet: true}
	return app.New(deps), deps
}

func TestRoutes(t *testing.T) {
	_, deps := newTestApp(t)

	got := map[string]bool{}
	for _, r := range app.Routes(app.NewServices(deps)) {
		assert.NotEmpty(t, r.Handlers, r.Path)
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /auth/register",
		"POST /auth/login",
		"GET /restaurants",
		"GET /restaurants/:restaurant_id/meals",
		"GET /restaurants/notifications/:last_request_time",
		"PATCH /restaurants/orders/:id/status",
		"POST /orders",
		"GET /orders/latest",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestHealth(t *testing.T) {
	a, _ := newTestApp(t)

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	a, _ := newTestApp(t)

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/restaurants", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = a.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `foodtasker_api_http_requests_total{method="GET",route="/restaurants",status="200"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	a, _ := newTestApp(t)

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
