// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/scoutlab/reefcore/internal/domain/stats"
)

// TeamsDependencies defines the interface for team detail reads.
type TeamsDependencies interface {
	TeamProfile(ctx context.Context, team int) (stats.Profile, Entry, error)
}

// TeamsHandler handles team detail requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

type teamResponse struct {
	Entry   Entry         `json:"entry"`
	Profile stats.Profile `json:"profile"`
}

// HandleGetTeam handles GET /teams/{number} requests.
func (h *TeamsHandler) HandleGetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_team"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/teams/")
	team, err := strconv.Atoi(path)
	if err != nil || team < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	profile, entry, err := h.deps.TeamProfile(r.Context(), team)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, teamResponse{Entry: entry, Profile: profile})
}
