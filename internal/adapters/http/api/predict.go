// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/scoutlab/reefcore/internal/domain/predict"
)

// PredictDependencies defines the interface for match predictions.
type PredictDependencies interface {
	Predict(ctx context.Context, red, blue []int, mode string, iterations int, seed int64) (predict.Prediction, error)
}

// PredictHandler handles match prediction requests.
type PredictHandler struct {
	deps PredictDependencies
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies) *PredictHandler {
	return &PredictHandler{deps: deps}
}

type predictRequest struct {
	Red        []int  `json:"red"`
	Blue       []int  `json:"blue"`
	Mode       string `json:"mode,omitempty"`
	Iterations int    `json:"iterations,omitempty"`
	Seed       int64  `json:"seed,omitempty"`
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	pred, err := h.deps.Predict(r.Context(), req.Red, req.Blue, req.Mode, req.Iterations, req.Seed)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}
