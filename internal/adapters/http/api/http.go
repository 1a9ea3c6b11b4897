// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/scoutlab/reefcore/internal/app"
	"github.com/scoutlab/reefcore/internal/domain/dedupe"
	"github.com/scoutlab/reefcore/internal/domain/draft"
	"github.com/scoutlab/reefcore/internal/domain/honorroll"
	"github.com/scoutlab/reefcore/internal/domain/model"
	"github.com/scoutlab/reefcore/internal/domain/predict"
	"github.com/scoutlab/reefcore/internal/domain/stats"
	"github.com/scoutlab/reefcore/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Ingest.
	Enqueue(ctx context.Context, rec model.MatchRecord) bool

	// Ranking reads.
	TopN(ctx context.Context, n int) ([]Entry, error)
	Rank(ctx context.Context, team int) (Entry, error)
	TeamProfile(ctx context.Context, team int) (stats.Profile, Entry, error)

	// Prediction.
	Predict(ctx context.Context, red, blue []int, mode string, iterations int, seed int64) (predict.Prediction, error)

	// Draft session.
	StartDraft(ctx context.Context, maxAlliances int) (string, error)
	DraftSessionID() string
	DraftSetCaptain(ctx context.Context, alliance, team int) error
	DraftSetPick(ctx context.Context, alliance int, slot string, team int) error
	DraftAutoOptimize(ctx context.Context) error
	DraftTable(ctx context.Context) ([]draft.TableRow, error)
	DraftAvailableCaptains(ctx context.Context, alliance int) ([]draft.Team, error)
	DraftAvailableTeams(ctx context.Context, captainRank int, slot string) ([]draft.Team, error)
	DraftReset(ctx context.Context) error

	// Honor roll.
	HonorRollSetPit(ctx context.Context, team int, rec *model.PitRecord) error
	HonorRollSetEvent(ctx context.Context, team int, organization, collaboration float64) error
	HonorRollSetCompetencies(ctx context.Context, team int, c honorroll.Competencies, sub honorroll.Subcompetencies) error
	HonorRollAddReport(ctx context.Context, team int, typ honorroll.ReportType) error
	HonorRollRanking(ctx context.Context) ([]honorroll.Result, error)
}

// Entry mirrors the read shape returned by ranking queries.
type Entry = types.Entry

// Server wires HTTP routes for the analysis API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	eventsHandler    *EventsHandler
	rankingHandler   *RankingHandler
	teamsHandler     *TeamsHandler
	predictHandler   *PredictHandler
	draftHandler     *DraftHandler
	honorRollHandler *HonorRollHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRankingLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		eventsHandler:    NewEventsHandler(deps),
		rankingHandler:   NewRankingHandler(deps, maxRankingLimit),
		teamsHandler:     NewTeamsHandler(deps),
		predictHandler:   NewPredictHandler(deps),
		draftHandler:     NewDraftHandler(deps),
		honorRollHandler: NewHonorRollHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandlePostRecord, "events"))
	mux.HandleFunc("/ranking", MetricsMiddleware(s.rankingHandler.HandleGetRanking, "ranking"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.teamsHandler.HandleGetTeam, "teams"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))

	mux.HandleFunc("/draft", MetricsMiddleware(s.draftHandler.HandleStart, "draft"))
	mux.HandleFunc("/draft/captain", MetricsMiddleware(s.draftHandler.HandleSetCaptain, "draft_captain"))
	mux.HandleFunc("/draft/pick", MetricsMiddleware(s.draftHandler.HandleSetPick, "draft_pick"))
	mux.HandleFunc("/draft/optimize", MetricsMiddleware(s.draftHandler.HandleOptimize, "draft_optimize"))
	mux.HandleFunc("/draft/table", MetricsMiddleware(s.draftHandler.HandleTable, "draft_table"))
	mux.HandleFunc("/draft/available", MetricsMiddleware(s.draftHandler.HandleAvailable, "draft_available"))
	mux.HandleFunc("/draft/reset", MetricsMiddleware(s.draftHandler.HandleReset, "draft_reset"))

	mux.HandleFunc("/honorroll/pit", MetricsMiddleware(s.honorRollHandler.HandlePit, "honorroll_pit"))
	mux.HandleFunc("/honorroll/event", MetricsMiddleware(s.honorRollHandler.HandleEvent, "honorroll_event"))
	mux.HandleFunc("/honorroll/competencies", MetricsMiddleware(s.honorRollHandler.HandleCompetencies, "honorroll_competencies"))
	mux.HandleFunc("/honorroll/report", MetricsMiddleware(s.honorRollHandler.HandleReport, "honorroll_report"))
	mux.HandleFunc("/honorroll/ranking", MetricsMiddleware(s.honorRollHandler.HandleRanking, "honorroll_ranking"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates sentinel errors from the domain layers into
// HTTP status codes.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, draft.ErrInvalidAssignment),
		errors.Is(err, draft.ErrEmptyPool),
		errors.Is(err, predict.ErrInvalidMode),
		errors.Is(err, model.ErrInvalidRecord),
		errors.Is(err, honorroll.ErrDegenerateInput):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, service.ErrNoDraft),
		errors.Is(err, draft.ErrUnknownAlliance),
		errors.Is(err, stats.ErrUnknownTeam),
		errors.Is(err, honorroll.ErrUnknownTeam),
		isNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, predict.ErrInsufficientData),
		errors.Is(err, stats.ErrNoRecords):
		writeError(w, http.StatusUnprocessableEntity, "insufficient_data", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
