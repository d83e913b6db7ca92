package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/travelmate/travelmate-ai/internal/chat"
	"github.com/travelmate/travelmate-ai/internal/orchestrator"
	"github.com/travelmate/travelmate-ai/internal/plans"
	"github.com/travelmate/travelmate-ai/internal/trips"
)

type echoOrchestrator struct{}

func (echoOrchestrator) Phase() string { return orchestrator.PhaseSequential }
func (echoOrchestrator) PlanTrip(context.Context, int64, string) (*orchestrator.PlanResult, error) {
	return &orchestrator.PlanResult{Status: orchestrator.StatusIncomplete, AgentMessage: "Please provide: origin"}, nil
}

type noopTripStore struct{}

func (noopTripStore) Create(_ context.Context, trip *trips.Trip) (*trips.Trip, error) {
	return trip, nil
}
func (noopTripStore) GetByID(context.Context, int64) (*trips.Trip, error) {
	return nil, trips.ErrTripNotFound
}
func (noopTripStore) UpdateStatus(context.Context, int64, string) error { return nil }

type noopPlanStore struct{}

func (noopPlanStore) Create(_ context.Context, record *plans.Record) (*plans.Record, error) {
	return record, nil
}
func (noopPlanStore) GetByTripID(context.Context, int64, *int) (*plans.Record, error) {
	return nil, plans.ErrPlanNotFound
}
func (noopPlanStore) NextVersion(context.Context, int64) (int, error) { return 1, nil }
func (noopPlanStore) UpdateStatus(context.Context, int64, string) error {
	return nil
}

type noopChatLog struct{}

func (noopChatLog) Save(_ context.Context, msg *chat.Message) (*chat.Message, error) {
	return msg, nil
}

func newTestRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	registry := orchestrator.NewRegistry(orchestrator.PhaseSequential)
	registry.Register(echoOrchestrator{})
	approvals := orchestrator.NewApprovals(noopTripStore{}, noopPlanStore{}, noopChatLog{}, nil, nil, nil)

	handler := New(&Config{
		Orchestrator:   orchestrator.NewHandler(registry, approvals, nil),
		Plans:          plans.NewHandler(plans.NewRepository(db), nil),
		MetricsHandler: promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
		AdminJWTSecret: "test-secret",
	})
	return handler, mock
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPlanTripRouted(t *testing.T) {
	handler, _ := newTestRouter(t)

	body := strings.NewReader(`{"user_input":"plan a trip","user_id":3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/plan-trip", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "INCOMPLETE")
}

func TestGetTripPlanRouted(t *testing.T) {
	handler, mock := newTestRouter(t)

	rows := sqlmock.NewRows([]string{
		"id", "trip_id", "itinerary_json", "hotels_json", "flights_json",
		"daily_budget", "total_estimated_cost", "generated_at", "updated_at",
		"status", "version", "agent_metadata",
	}).AddRow(42, 7, `"Day 1"`, "[]", "[]", 5000.0, 20000.0, time.Now(), time.Now(), "draft", 1, "")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).WillReturnRows(rows)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trips/7/plan", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":1`)
}

func TestUpdatePlanStatusRequiresAdminToken(t *testing.T) {
	handler, _ := newTestRouter(t)

	body := strings.NewReader(`{"status":"approved"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/plans/42/status", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownRouteReturns404(t *testing.T) {
	handler, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
