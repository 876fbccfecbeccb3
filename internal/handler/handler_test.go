package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blahbluh/internal/app/chat"
	"blahbluh/internal/app/pairing"
	"blahbluh/internal/configs"
	"blahbluh/internal/pkg/errs"
	"blahbluh/internal/pkg/metrics"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func newTestDeps() *AppDeps {
	m := metrics.New(prometheus.NewRegistry())
	hub := chat.NewHub(m)
	service := pairing.NewService(hub, m, 1)

	return &AppDeps{
		Service: service,
		Hub:     hub,
		Config: &configs.AppConfig{
			Environment:    "development",
			Port:           3002,
			AllowedOrigins: []string{},
			SweepInterval:  time.Second,
		},
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var parsed apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	return rec, parsed
}

func TestHealthEndpoint(t *testing.T) {
	router := Router(newTestDeps())

	rec, res := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, res.Code)
	assert.Equal(t, "ok", res.Data["status"])
}

func TestGenerateUser(t *testing.T) {
	router := Router(newTestDeps())

	rec, res := doJSON(t, router, http.MethodGet, "/api/generate-user", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, res.Code)
	assert.NotEmpty(t, res.Data["userId"])
	assert.NotEmpty(t, res.Data["username"])
}

func TestJoinQueueMintsIdentity(t *testing.T) {
	router := Router(newTestDeps())

	_, res := doJSON(t, router, http.MethodPost, "/api/join-queue", map[string]any{})

	require.Equal(t, 0, res.Code)
	assert.NotEmpty(t, res.Data["userId"])
	assert.NotEmpty(t, res.Data["username"])
	// No WebSocket connection registered yet, so the join's own sweep purged
	// the entry.
	assert.Equal(t, false, res.Data["inQueue"])
}

func TestJoinQueueRegisteredUserWaits(t *testing.T) {
	deps := newTestDeps()
	router := Router(deps)

	deps.Service.Register("u1", "conn-1")

	_, res := doJSON(t, router, http.MethodPost, "/api/join-queue", map[string]any{
		"userId":   "u1",
		"username": "Dancing Penguin",
	})

	require.Equal(t, 0, res.Code)
	assert.Equal(t, true, res.Data["inQueue"])
	assert.Equal(t, float64(1), res.Data["queuePosition"])
}

func TestJoinQueuePairsThroughAPI(t *testing.T) {
	deps := newTestDeps()
	router := Router(deps)

	deps.Service.Register("u1", "conn-1")
	deps.Service.Register("u2", "conn-2")

	doJSON(t, router, http.MethodPost, "/api/join-queue", map[string]any{
		"userId": "u1", "username": "Dancing Penguin",
	})
	_, res := doJSON(t, router, http.MethodPost, "/api/join-queue", map[string]any{
		"userId": "u2", "username": "Glowing Cactus",
	})

	require.Equal(t, 0, res.Code)
	assert.Equal(t, false, res.Data["inQueue"])

	_, status := doJSON(t, router, http.MethodGet, "/api/queue-status/u1", nil)
	assert.Equal(t, false, status.Data["inQueue"])
	assert.Equal(t, float64(0), status.Data["totalInQueue"])
}

func TestJoinQueueRejectsNonJSON(t *testing.T) {
	router := Router(newTestDeps())

	req := httptest.NewRequest(http.MethodPost, "/api/join-queue", bytes.NewReader([]byte("userId=u1")))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var res apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, errs.ErrUnsupportedMediaType, res.Code)
}

func TestLeaveQueue(t *testing.T) {
	deps := newTestDeps()
	router := Router(deps)

	deps.Service.Register("u1", "conn-1")
	doJSON(t, router, http.MethodPost, "/api/join-queue", map[string]any{
		"userId": "u1", "username": "Dancing Penguin",
	})

	_, res := doJSON(t, router, http.MethodPost, "/api/leave-queue", map[string]any{
		"userId": "u1",
	})

	require.Equal(t, 0, res.Code)
	assert.Equal(t, false, res.Data["inQueue"])

	_, status := doJSON(t, router, http.MethodGet, "/api/queue-status/u1", nil)
	assert.Equal(t, false, status.Data["inQueue"])
}

func TestLeaveQueueMissingUserID(t *testing.T) {
	router := Router(newTestDeps())

	_, res := doJSON(t, router, http.MethodPost, "/api/leave-queue", map[string]any{})

	assert.Equal(t, errs.ErrInvalidParams, res.Code)
}

func TestQueueStatusUnknownUser(t *testing.T) {
	router := Router(newTestDeps())

	rec, res := doJSON(t, router, http.MethodGet, "/api/queue-status/nobody", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 0, res.Code)
	assert.Equal(t, false, res.Data["inQueue"])
	assert.Equal(t, float64(0), res.Data["queuePosition"])
	assert.Equal(t, float64(0), res.Data["totalInQueue"])
}

func TestMetricsEndpoint(t *testing.T) {
	router := Router(newTestDeps())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
