// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/scoutlab/reefcore/internal/domain/honorroll"
	"github.com/scoutlab/reefcore/internal/domain/model"
)

// HonorRollDependencies defines the interface for honor roll operations.
type HonorRollDependencies interface {
	HonorRollSetPit(ctx context.Context, team int, rec *model.PitRecord) error
	HonorRollSetEvent(ctx context.Context, team int, organization, collaboration float64) error
	HonorRollSetCompetencies(ctx context.Context, team int, c honorroll.Competencies, sub honorroll.Subcompetencies) error
	HonorRollAddReport(ctx context.Context, team int, typ honorroll.ReportType) error
	HonorRollRanking(ctx context.Context) ([]honorroll.Result, error)
}

// HonorRollHandler handles honor roll scoring requests.
type HonorRollHandler struct {
	deps HonorRollDependencies
}

// NewHonorRollHandler creates a new honor roll handler.
func NewHonorRollHandler(deps HonorRollDependencies) *HonorRollHandler {
	return &HonorRollHandler{deps: deps}
}

type pitRequest struct {
	Team int             `json:"team"`
	Pit  model.PitRecord `json:"pit"`
}

// HandlePit handles POST /honorroll/pit requests.
func (h *HonorRollHandler) HandlePit(w http.ResponseWriter, r *http.Request) {
	const op = "api.honorroll_pit"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req pitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.HonorRollSetPit(r.Context(), req.Team, &req.Pit); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

type eventScoreRequest struct {
	Team          int     `json:"team"`
	Organization  float64 `json:"organization"`
	Collaboration float64 `json:"collaboration"`
}

// HandleEvent handles POST /honorroll/event requests.
func (h *HonorRollHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.honorroll_event"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req eventScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.HonorRollSetEvent(r.Context(), req.Team, req.Organization, req.Collaboration); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

type competenciesRequest struct {
	Team            int                       `json:"team"`
	Competencies    honorroll.Competencies    `json:"competencies"`
	Subcompetencies honorroll.Subcompetencies `json:"subcompetencies"`
}

// HandleCompetencies handles POST /honorroll/competencies requests.
func (h *HonorRollHandler) HandleCompetencies(w http.ResponseWriter, r *http.Request) {
	const op = "api.honorroll_competencies"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req competenciesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.HonorRollSetCompetencies(r.Context(), req.Team, req.Competencies, req.Subcompetencies); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

type reportRequest struct {
	Team int    `json:"team"`
	Type string `json:"type"`
}

// HandleReport handles POST /honorroll/report requests.
func (h *HonorRollHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.honorroll_report"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.HonorRollAddReport(r.Context(), req.Team, honorroll.ReportType(req.Type)); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

// HandleRanking handles GET /honorroll/ranking requests.
func (h *HonorRollHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	const op = "api.honorroll_ranking"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	results, err := h.deps.HonorRollRanking(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
