package plans

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerWithMock(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewHandler(NewRepository(db), nil), mock
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetTripPlanReturnsLatest(t *testing.T) {
	handler, mock := newHandlerWithMock(t)

	record, err := RecordFromTravelPlan(samplePlan(), 7, 2)
	require.NoError(t, err)
	record.ID = 31
	record.Status = StatusDraft

	mock.ExpectQuery("SELECT (.+) FROM trip_plans WHERE trip_id = \\? ORDER BY version DESC LIMIT 1").
		WithArgs(int64(7)).
		WillReturnRows(planRows(*record))

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/trips/7/plan", nil), "tripID", "7")
	rec := httptest.NewRecorder()
	handler.GetTripPlan(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(31), resp.PlanID)
	assert.Equal(t, 2, resp.Version)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, 1, resp.Plan.HotelCount())
}

func TestGetTripPlanExplicitVersion(t *testing.T) {
	handler, mock := newHandlerWithMock(t)

	mock.ExpectQuery("SELECT (.+) FROM trip_plans WHERE trip_id = \\? AND version = \\?").
		WithArgs(int64(7), 1).
		WillReturnRows(planRows(Record{ID: 29, TripID: 7, Status: StatusRejected, Version: 1}))

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/trips/7/plan?version=1", nil), "tripID", "7")
	rec := httptest.NewRecorder()
	handler.GetTripPlan(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Version)
	assert.Equal(t, StatusRejected, resp.Status)
}

func TestGetTripPlanNotFound(t *testing.T) {
	handler, mock := newHandlerWithMock(t)

	mock.ExpectQuery("SELECT (.+) FROM trip_plans").
		WithArgs(int64(404)).
		WillReturnRows(planRows())

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/trips/404/plan", nil), "tripID", "404")
	rec := httptest.NewRecorder()
	handler.GetTripPlan(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTripPlanRejectsBadTripID(t *testing.T) {
	handler, _ := newHandlerWithMock(t)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/trips/abc/plan", nil), "tripID", "abc")
	rec := httptest.NewRecorder()
	handler.GetTripPlan(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveTripPlanAssignsNextVersion(t *testing.T) {
	handler, mock := newHandlerWithMock(t)

	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(version\\), 0\\) \\+ 1").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec("INSERT INTO trip_plans").
		WillReturnResult(sqlmock.NewResult(42, 1))

	body, err := json.Marshal(SaveTripPlanRequest{Plan: samplePlan()})
	require.NoError(t, err)

	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/api/v1/trips/7/plan", bytes.NewReader(body)),
		"tripID", "7",
	)
	rec := httptest.NewRecorder()
	handler.SaveTripPlan(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, int64(42), resp.PlanID)
	assert.Equal(t, 3, resp.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveTripPlanRequiresPlan(t *testing.T) {
	handler, _ := newHandlerWithMock(t)

	req := withURLParam(
		httptest.NewRequest(http.MethodPost, "/api/v1/trips/7/plan", bytes.NewReader([]byte(`{}`))),
		"tripID", "7",
	)
	rec := httptest.NewRecorder()
	handler.SaveTripPlan(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusApprovesPlan(t *testing.T) {
	handler, mock := newHandlerWithMock(t)

	mock.ExpectExec("UPDATE trip_plans SET status").
		WithArgs(StatusApproved, sqlmock.AnyArg(), int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := []byte(`{"status":"approved"}`)
	req := withURLParam(
		httptest.NewRequest(http.MethodPut, "/api/v1/plans/31/status", bytes.NewReader(body)),
		"planID", "31",
	)
	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, StatusApproved, resp.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler, _ := newHandlerWithMock(t)

	body := []byte(`{"status":"maybe"}`)
	req := withURLParam(
		httptest.NewRequest(http.MethodPut, "/api/v1/plans/31/status", bytes.NewReader(body)),
		"planID", "31",
	)
	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatusPlanNotFound(t *testing.T) {
	handler, mock := newHandlerWithMock(t)

	mock.ExpectExec("UPDATE trip_plans SET status").
		WithArgs(StatusRejected, sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	body := []byte(`{"status":"rejected"}`)
	req := withURLParam(
		httptest.NewRequest(http.MethodPut, "/api/v1/plans/99/status", bytes.NewReader(body)),
		"planID", "99",
	)
	rec := httptest.NewRecorder()
	handler.UpdateStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
