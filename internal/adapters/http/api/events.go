// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/scoutlab/reefcore/internal/domain/dedupe"
	"github.com/scoutlab/reefcore/internal/domain/model"
	"github.com/scoutlab/reefcore/pkg/metrics"
)

// EventDependencies defines the interface for record ingestion.
type EventDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, rec model.MatchRecord) bool
}

// EventsHandler handles scouting record submissions.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type recordAck struct {
	RecordID  string `json:"record_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	Error     string `json:"error,omitempty"`
}

type batchResponse struct {
	Accepted int         `json:"accepted"`
	Rejected int         `json:"rejected"`
	Results  []recordAck `json:"results"`
}

// HandlePostRecord handles POST /events. The body is either a single
// record object or an array of records; arrays get 207-style per-record
// results.
func (h *EventsHandler) HandlePostRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_record"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		h.handleBatch(w, r, op, body)
		return
	}

	var rec model.MatchRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ack, status := h.ingest(r.Context(), &rec)
	switch status {
	case http.StatusAccepted:
		writeJSON(w, http.StatusAccepted, ackResponse{Status: ack.Status, Duplicate: ack.Duplicate})
	case http.StatusOK:
		writeJSON(w, http.StatusOK, ackResponse{Status: ack.Status, Duplicate: true})
	case http.StatusBadRequest:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
	default:
		writeError(w, http.StatusServiceUnavailable, "backpressure", NewKind(op, ErrBackpressure))
	}
}

func (h *EventsHandler) handleBatch(w http.ResponseWriter, r *http.Request, op string, body []byte) {
	var records []model.MatchRecord
	if err := json.Unmarshal(body, &records); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	resp := batchResponse{Results: make([]recordAck, 0, len(records))}
	for i := range records {
		ack, status := h.ingest(r.Context(), &records[i])
		if status == http.StatusAccepted {
			resp.Accepted++
		} else {
			resp.Rejected++
		}
		resp.Results = append(resp.Results, ack)
	}

	status := http.StatusAccepted
	if resp.Rejected > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

// ingest validates, deduplicates, and enqueues one record. A missing
// record ID gets one assigned so retried submissions stay idempotent when
// the client supplies its own.
func (h *EventsHandler) ingest(ctx context.Context, rec *model.MatchRecord) (recordAck, int) {
	if rec.RecordID == "" {
		rec.RecordID = uuid.NewString()
	}

	if err := rec.Validate(); err != nil {
		metrics.RecordRecordRejected()
		return recordAck{RecordID: rec.RecordID, Status: "rejected", Error: err.Error()}, http.StatusBadRequest
	}

	if h.deps.SeenAndRecord(ctx, rec.RecordID) {
		return recordAck{RecordID: rec.RecordID, Status: "duplicate", Duplicate: true}, http.StatusOK
	}

	if ok := h.deps.Enqueue(ctx, *rec); !ok {
		// Roll back the seen mark so the record can be retried.
		h.deps.Unrecord(ctx, rec.RecordID)
		metrics.RecordRecordRejected()
		return recordAck{RecordID: rec.RecordID, Status: "rejected", Error: "queue full"}, http.StatusServiceUnavailable
	}

	return recordAck{RecordID: rec.RecordID, Status: "accepted"}, http.StatusAccepted
}
