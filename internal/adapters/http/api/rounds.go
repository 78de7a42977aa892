package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clefscore/clef/internal/adapters/repository"
	"github.com/clefscore/clef/internal/domain/dedupe"
	"github.com/clefscore/clef/internal/domain/model"
	"github.com/clefscore/clef/pkg/metrics"
)

// RoundsDependencies defines the interface for round submission.
type RoundsDependencies interface {
	dedupe.Deduper
	SubmitRound(ctx context.Context, r model.RoundRecord) error
	Enqueue(ctx context.Context, userID string) bool
}

// RoundsHandler handles round submissions.
type RoundsHandler struct {
	deps RoundsDependencies
}

// NewRoundsHandler creates a new rounds handler.
func NewRoundsHandler(deps RoundsDependencies) *RoundsHandler {
	return &RoundsHandler{deps: deps}
}

// roundRequest mirrors the OpenAPI schema for POST /rounds.
type roundRequest struct {
	RoundID       string          `json:"round_id"`
	NetScore      int             `json:"net_score"`
	QuestionCount int             `json:"question_count"`
	Difficulty    string          `json:"difficulty"`
	Meta          json.RawMessage `json:"meta"`
	OccurredAt    string          `json:"occurred_at"`
}

func (r roundRequest) validate() error {
	switch {
	case strings.TrimSpace(r.OccurredAt) == "":
		return errors.New("missing occurred_at")
	case r.QuestionCount < 0:
		return errors.New("question_count must not be negative")
	}
	if _, err := time.Parse(time.RFC3339, r.OccurredAt); err != nil {
		return errors.New("invalid occurred_at; must be RFC3339")
	}
	return nil
}

// HandlePostRound handles POST /rounds requests.
func (h *RoundsHandler) HandlePostRound(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_round"

	userID, ok := UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", NewKind(op, ErrUnauthorized))
		return
	}

	var req roundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	roundID := strings.TrimSpace(req.RoundID)
	if roundID == "" {
		roundID = uuid.NewString()
	}

	// Idempotency check before touching storage.
	if h.deps.SeenAndRecord(r.Context(), roundID) {
		metrics.RecordRoundDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, RoundID: roundID})
		return
	}

	occurredAt, _ := time.Parse(time.RFC3339, req.OccurredAt)
	record := model.RoundRecord{
		ID:            roundID,
		UserID:        userID,
		NetScore:      req.NetScore,
		QuestionCount: req.QuestionCount,
		Difficulty:    req.Difficulty,
		Meta:          string(req.Meta),
		OccurredAt:    occurredAt.UTC(),
	}

	if err := h.deps.SubmitRound(r.Context(), record); err != nil {
		if errors.Is(err, repository.ErrDuplicateRound) {
			// Stored by an earlier request; refresh the board anyway in
			// case that request failed after persisting.
			h.deps.Enqueue(r.Context(), userID)
			metrics.RecordRoundDuplicate()
			writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true, RoundID: roundID})
			return
		}
		h.deps.Unrecord(r.Context(), roundID)
		metrics.RecordRoundRejected()
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}

	if ok := h.deps.Enqueue(r.Context(), userID); !ok {
		// The round is durable; clearing the dedupe record lets a retry
		// reach storage and reschedule the replay.
		h.deps.Unrecord(r.Context(), roundID)
		metrics.RecordRoundRejected()
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}

	metrics.RecordRoundSubmitted()
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false, RoundID: roundID})
}
