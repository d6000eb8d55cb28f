package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/backscroll/internal/store"
	"github.com/flemzord/backscroll/pkg/message"
)

// contextRequest is the body of POST /v1/conversations/{id}/context.
// The trigger must already be appended (or be supplied in full here);
// the engine never re-reads it from storage.
type contextRequest struct {
	Trigger message.Message `json:"trigger"`

	// Optional per-request overrides of the engine defaults.
	LookbackLimit *int   `json:"lookback_limit,omitempty"`
	GapThreshold  string `json:"gap_threshold,omitempty"` // Go duration, e.g. "2h"
}

// contextResponse wraps the computed window with its session size.
type contextResponse struct {
	Window      message.Window `json:"window"`
	SessionSize int            `json:"session_size"`
}

func (g *Gateway) handleAppend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg message.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
		msg.ID = 0 // storage assigns the key
		msg.ConversationID = chi.URLParam(r, "id")

		if err := msg.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		stored, err := g.engine.Append(r.Context(), msg)
		if err != nil {
			if errors.Is(err, store.ErrDuplicateSequence) {
				writeError(w, http.StatusConflict, "sequence id already stored for this conversation")
				return
			}
			g.fail(w, "append failed", err)
			return
		}

		g.metrics.RecordAppend()
		g.prom.Appends.Inc()
		writeJSON(w, http.StatusCreated, stored)
	}
}

func (g *Gateway) handleContext() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
			return
		}
		req.Trigger.ConversationID = chi.URLParam(r, "id")

		if err := req.Trigger.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Trigger.CreatedAt.IsZero() {
			req.Trigger.CreatedAt = time.Now().UTC()
		}

		params := g.engine.Params()
		if req.LookbackLimit != nil {
			params.LookbackLimit = *req.LookbackLimit
		}
		if req.GapThreshold != "" {
			gap, err := time.ParseDuration(req.GapThreshold)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid gap_threshold: "+err.Error())
				return
			}
			params.GapThreshold = gap
		}
		if err := params.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		started := time.Now()
		window, err := g.engine.WindowWith(r.Context(), req.Trigger, params)
		if err != nil {
			g.fail(w, "context retrieval failed", err)
			return
		}
		latency := time.Since(started)

		g.metrics.RecordRetrieval(len(window.Session), latency)
		g.prom.Retrievals.Inc()
		g.prom.RetrievalSeconds.Observe(latency.Seconds())
		g.prom.SessionSize.Observe(float64(len(window.Session)))
		if req.Trigger.IsReply() {
			if window.HasAnchor() {
				g.prom.AnchorHits.Inc()
			} else {
				g.prom.AnchorMisses.Inc()
			}
		}

		writeJSON(w, http.StatusOK, contextResponse{
			Window:      window,
			SessionSize: len(window.Session),
		})
	}
}

// handleRecent returns the raw tail of the log, newest first. A debug
// aid for operators; the engine's session semantics live in /context.
func (g *Gateway) handleRecent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		msgs, err := g.store.Recent(r.Context(), chi.URLParam(r, "id"), limit)
		if err != nil {
			g.fail(w, "recent lookup failed", err)
			return
		}
		if msgs == nil {
			msgs = []message.Message{}
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func (g *Gateway) fail(w http.ResponseWriter, msg string, err error) {
	g.metrics.RecordError()
	g.prom.Errors.Inc()
	g.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
