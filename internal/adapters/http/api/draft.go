// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/scoutlab/reefcore/internal/domain/draft"
)

// DraftDependencies defines the interface for draft session operations.
type DraftDependencies interface {
	StartDraft(ctx context.Context, maxAlliances int) (string, error)
	DraftSessionID() string
	DraftSetCaptain(ctx context.Context, alliance, team int) error
	DraftSetPick(ctx context.Context, alliance int, slot string, team int) error
	DraftAutoOptimize(ctx context.Context) error
	DraftTable(ctx context.Context) ([]draft.TableRow, error)
	DraftAvailableCaptains(ctx context.Context, alliance int) ([]draft.Team, error)
	DraftAvailableTeams(ctx context.Context, captainRank int, slot string) ([]draft.Team, error)
	DraftReset(ctx context.Context) error
}

// DraftHandler handles alliance selection requests.
type DraftHandler struct {
	deps DraftDependencies
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(deps DraftDependencies) *DraftHandler {
	return &DraftHandler{deps: deps}
}

type draftStartRequest struct {
	MaxAlliances int `json:"max_alliances,omitempty"`
}

type draftStartResponse struct {
	SessionID string `json:"session_id"`
}

// HandleStart handles POST /draft requests.
func (h *DraftHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_start"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req draftStartRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	id, err := h.deps.StartDraft(r.Context(), req.MaxAlliances)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, draftStartResponse{SessionID: id})
}

type assignmentRequest struct {
	Alliance int    `json:"alliance"`
	Team     int    `json:"team"`
	Slot     string `json:"slot,omitempty"`
}

// HandleSetCaptain handles PUT /draft/captain requests. A team of zero
// clears the captain slot.
func (h *DraftHandler) HandleSetCaptain(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_set_captain"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.DraftSetCaptain(r.Context(), req.Alliance, req.Team); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

// HandleSetPick handles PUT /draft/pick requests. A team of zero clears
// the slot.
func (h *DraftHandler) HandleSetPick(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_set_pick"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.DraftSetPick(r.Context(), req.Alliance, req.Slot, req.Team); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}

// HandleOptimize handles POST /draft/optimize requests.
func (h *DraftHandler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_optimize"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.DraftAutoOptimize(r.Context()); err != nil {
		writeDomainError(w, op, err)
		return
	}
	table, err := h.deps.DraftTable(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

type draftTableResponse struct {
	SessionID string           `json:"session_id"`
	Table     []draft.TableRow `json:"table"`
}

// HandleTable handles GET /draft/table requests.
func (h *DraftHandler) HandleTable(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_table"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	table, err := h.deps.DraftTable(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, draftTableResponse{SessionID: h.deps.DraftSessionID(), Table: table})
}

// HandleAvailable handles GET /draft/available requests. With ?alliance=N
// it lists assignable captains for that alliance; with ?captain_rank=R
// and ?slot=pick1|pick2 it lists draftable teams in slot order.
func (h *DraftHandler) HandleAvailable(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_available"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	if allianceStr := q.Get("alliance"); allianceStr != "" {
		alliance, err := strconv.Atoi(allianceStr)
		if err != nil || alliance < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		teams, err := h.deps.DraftAvailableCaptains(r.Context(), alliance)
		if err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
		return
	}

	rankStr := q.Get("captain_rank")
	slot := q.Get("slot")
	captainRank, err := strconv.Atoi(rankStr)
	if err != nil || captainRank < 1 || slot == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	teams, err := h.deps.DraftAvailableTeams(r.Context(), captainRank, slot)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// HandleReset handles POST /draft/reset requests.
func (h *DraftHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.draft_reset"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := h.deps.DraftReset(r.Context()); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{Status: "ok"})
}
