package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/backscroll/internal/store"
	"github.com/flemzord/backscroll/pkg/message"
)

// Engine is the retrieval facade: the single entry point a reasoning
// component calls. It holds a store handle and default parameters passed
// in explicitly at construction — no process-wide state, so concurrent
// instances can run with different tuning.
type Engine struct {
	store  store.Store
	params Params
	logger *slog.Logger
	tracer trace.Tracer
}

// New creates an Engine over the given store. Zero-valued params are
// filled with defaults; the result is validated once here so every
// retrieval using the engine defaults skips re-validation I/O-side.
func New(st store.Store, params Params, logger *slog.Logger) (*Engine, error) {
	params = params.withDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  st,
		params: params,
		logger: logger,
		tracer: otel.Tracer("github.com/flemzord/backscroll/internal/engine"),
	}, nil
}

// Params returns the engine's default retrieval parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Append records a message in the conversation log. Called once per
// inbound and once per outbound message; the trigger must be appended
// before its own window is requested.
func (e *Engine) Append(ctx context.Context, msg message.Message) (message.Message, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Append",
		trace.WithAttributes(attribute.String("conversation.id", msg.ConversationID)))
	defer span.End()

	stored, err := e.store.Append(ctx, msg)
	if err != nil {
		return message.Message{}, fmt.Errorf("engine: append: %w", err)
	}

	e.logger.Debug("message appended",
		"conversation_id", stored.ConversationID,
		"role", stored.Role,
		"sequence_id", stored.SequenceID,
	)
	return stored, nil
}

// Window computes the context window for a trigger using the engine's
// default parameters.
func (e *Engine) Window(ctx context.Context, trigger message.Message) (message.Window, error) {
	return e.window(ctx, trigger, e.params, false)
}

// WindowWith computes the context window with per-call parameters,
// validated before any I/O.
func (e *Engine) WindowWith(ctx context.Context, trigger message.Message, params Params) (message.Window, error) {
	return e.window(ctx, trigger, params, true)
}

func (e *Engine) window(ctx context.Context, trigger message.Message, params Params, validateParams bool) (message.Window, error) {
	if err := trigger.Validate(); err != nil {
		return message.Window{}, err
	}
	if validateParams {
		if err := params.Validate(); err != nil {
			return message.Window{}, err
		}
	}

	ctx, span := e.tracer.Start(ctx, "engine.Window",
		trace.WithAttributes(
			attribute.String("conversation.id", trigger.ConversationID),
			attribute.Int("lookback_limit", params.LookbackLimit),
			attribute.String("gap_threshold", params.GapThreshold.String()),
		))
	defer span.End()

	anchor, err := e.resolveAnchor(ctx, trigger)
	if err != nil {
		return message.Window{}, err
	}

	// A store failure must surface: an empty window is a valid domain
	// state ("no history") and cannot double as an error signal.
	candidates, err := e.store.Recent(ctx, trigger.ConversationID, params.LookbackLimit)
	if err != nil {
		return message.Window{}, fmt.Errorf("engine: fetch lookback window: %w", err)
	}

	session := clusterSession(trigger, candidates, params.GapThreshold)
	window := assembleWindow(trigger, anchor, session)

	span.SetAttributes(
		attribute.Int("session.size", len(session)),
		attribute.Bool("anchor.found", anchor.Found),
	)
	e.logger.Debug("context window computed",
		"conversation_id", trigger.ConversationID,
		"session_size", len(session),
		"anchor_found", anchor.Found,
	)

	return window, nil
}
