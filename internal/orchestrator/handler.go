package orchestrator

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/travelmate/travelmate-ai/internal/trips"
	"github.com/travelmate/travelmate-ai/pkg/logging"
)

// Handler exposes the planning and approval flows over HTTP.
type Handler struct {
	registry  *Registry
	approvals *Approvals
	logger    *logging.Logger
}

// NewHandler creates the orchestrator handler.
func NewHandler(registry *Registry, approvals *Approvals, logger *logging.Logger) *Handler {
	if registry == nil {
		panic("orchestrator: registry cannot be nil")
	}
	if approvals == nil {
		panic("orchestrator: approvals cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{registry: registry, approvals: approvals, logger: logger}
}

// PlanTripRequest is the body for POST /api/v1/plan-trip.
type PlanTripRequest struct {
	UserInput string `json:"user_input"`
	UserID    int64  `json:"user_id"`
	Phase     string `json:"phase,omitempty"`
}

type planTripResponse struct {
	Success bool        `json:"success"`
	Phase   string      `json:"phase,omitempty"`
	Result  *PlanResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PlanTrip handles POST /api/v1/plan-trip requests.
func (h *Handler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var req PlanTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, planTripResponse{Success: false, Error: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.UserInput) == "" {
		writeJSON(w, http.StatusBadRequest, planTripResponse{Success: false, Error: "user_input is required"})
		return
	}
	if req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, planTripResponse{Success: false, Error: "user_id is required"})
		return
	}

	orchestrator, err := h.registry.Get(req.Phase)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, planTripResponse{Success: false, Error: err.Error()})
		return
	}

	result, err := orchestrator.PlanTrip(r.Context(), req.UserID, req.UserInput)
	if err != nil {
		h.logger.Error("planning failed", "error", err, "user_id", req.UserID, "phase", orchestrator.Phase())
		writeJSON(w, http.StatusInternalServerError, planTripResponse{Success: false, Error: "planning failed"})
		return
	}

	writeJSON(w, http.StatusOK, planTripResponse{
		Success: true,
		Phase:   orchestrator.Phase(),
		Result:  result,
	})
}

// ApproveRequest is the body for POST /api/v1/approve.
type ApproveRequest struct {
	TripID   int64  `json:"trip_id"`
	UserID   int64  `json:"user_id"`
	Approval bool   `json:"approval"`
	Feedback string `json:"feedback,omitempty"`
	Phase    string `json:"phase,omitempty"`
}

type approveResponse struct {
	Success bool            `json:"success"`
	Result  *ApprovalResult `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Approve handles POST /api/v1/approve requests.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, approveResponse{Success: false, Error: "invalid request body"})
		return
	}
	if req.TripID <= 0 || req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, approveResponse{Success: false, Error: "trip_id and user_id are required"})
		return
	}

	phase := normalizePhase(req.Phase)
	if phase == "" {
		phase = PhaseSequential
	}

	result, err := h.approvals.Decide(r.Context(), req.UserID, req.TripID, req.Approval, req.Feedback, phase)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrTripNotFound):
			writeJSON(w, http.StatusNotFound, approveResponse{Success: false, Error: "trip not found"})
		case errors.Is(err, ErrNoPlanToApprove):
			writeJSON(w, http.StatusNotFound, approveResponse{Success: false, Error: "trip has no plan to approve"})
		default:
			h.logger.Error("approval failed", "error", err, "trip_id", req.TripID)
			writeJSON(w, http.StatusInternalServerError, approveResponse{Success: false, Error: "approval failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, approveResponse{Success: true, Result: result})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
