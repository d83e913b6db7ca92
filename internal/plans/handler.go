package plans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/travelmate/travelmate-ai/pkg/logging"
)

// Handler handles HTTP requests for trip plans
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

// NewHandler creates a new plans handler
func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type planResponse struct {
	Success bool        `json:"success"`
	Plan    *TravelPlan `json:"plan,omitempty"`
	PlanID  int64       `json:"plan_id,omitempty"`
	Status  string      `json:"status,omitempty"`
	Version int         `json:"version,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// GetTripPlan handles GET /api/v1/trips/{tripID}/plan requests. Without a
// version query parameter the latest version is returned.
func (h *Handler) GetTripPlan(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseInt(chi.URLParam(r, "tripID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid trip id"})
		return
	}

	var version *int
	if v := r.URL.Query().Get("version"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid version"})
			return
		}
		version = &parsed
	}

	record, err := h.repo.GetByTripID(r.Context(), tripID, version)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			writeJSON(w, http.StatusNotFound, planResponse{Success: false, Error: "trip plan not found"})
			return
		}
		h.logger.Error("failed to fetch plan", "error", err, "trip_id", tripID)
		writeJSON(w, http.StatusInternalServerError, planResponse{Success: false, Error: "failed to fetch plan"})
		return
	}

	writeJSON(w, http.StatusOK, planResponse{
		Success: true,
		Plan:    record.TravelPlan(),
		PlanID:  record.ID,
		Status:  record.Status,
		Version: record.Version,
	})
}

// SaveTripPlanRequest is the body for saving a plan directly.
type SaveTripPlanRequest struct {
	Plan    *TravelPlan `json:"plan"`
	Version *int        `json:"version,omitempty"`
}

// SaveTripPlan handles POST /api/v1/trips/{tripID}/plan requests. Omitting
// the version assigns the next free version for the trip.
func (h *Handler) SaveTripPlan(w http.ResponseWriter, r *http.Request) {
	tripID, err := strconv.ParseInt(chi.URLParam(r, "tripID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid trip id"})
		return
	}

	var req SaveTripPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Plan == nil {
		writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid request body"})
		return
	}

	version := 0
	if req.Version != nil {
		version = *req.Version
	} else {
		version, err = h.repo.NextVersion(r.Context(), tripID)
		if err != nil {
			h.logger.Error("failed to resolve plan version", "error", err, "trip_id", tripID)
			writeJSON(w, http.StatusInternalServerError, planResponse{Success: false, Error: "failed to save plan"})
			return
		}
	}

	record, err := RecordFromTravelPlan(req.Plan, tripID, version)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid plan payload"})
		return
	}

	created, err := h.repo.Create(r.Context(), record)
	if err != nil {
		h.logger.Error("failed to save plan", "error", err, "trip_id", tripID, "version", version)
		writeJSON(w, http.StatusInternalServerError, planResponse{Success: false, Error: "failed to save plan"})
		return
	}

	h.logger.Info("plan saved", "trip_id", tripID, "plan_id", created.ID, "version", created.Version)
	writeJSON(w, http.StatusCreated, planResponse{
		Success: true,
		PlanID:  created.ID,
		Status:  created.Status,
		Version: created.Version,
	})
}

// UpdateStatusRequest is the body for plan status updates.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PUT /api/v1/plans/{planID}/status requests.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	planID, err := strconv.ParseInt(chi.URLParam(r, "planID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid plan id"})
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid request body"})
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), planID, req.Status); err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, planResponse{Success: false, Error: "invalid plan status"})
		case errors.Is(err, ErrPlanNotFound):
			writeJSON(w, http.StatusNotFound, planResponse{Success: false, Error: "trip plan not found"})
		default:
			h.logger.Error("failed to update plan status", "error", err, "plan_id", planID)
			writeJSON(w, http.StatusInternalServerError, planResponse{Success: false, Error: "failed to update plan status"})
		}
		return
	}

	h.logger.Info("plan status updated", "plan_id", planID, "status", req.Status)
	writeJSON(w, http.StatusOK, planResponse{Success: true, PlanID: planID, Status: req.Status})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
