package tracing

import (
	"context"

	"github.com/rivo/uniseg"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/undopad/internal/history"
	"github.com/zjrosen/undopad/internal/pubsub"
)

// ChangeRecorder turns history changes into spans. Edits are not traced
// one by one; they are counted and reported on the next checkpoint.
// It must be used from the goroutine that drives the history manager.
type ChangeRecorder struct {
	ctx     context.Context
	tracer  trace.Tracer
	session string
	edits   int
}

var _ pubsub.Publisher[history.Change] = (*ChangeRecorder)(nil)

// NewChangeRecorder records spans as children of the span in ctx.
func NewChangeRecorder(ctx context.Context, tracer trace.Tracer, sessionID string) *ChangeRecorder {
	return &ChangeRecorder{ctx: ctx, tracer: tracer, session: sessionID}
}

// WithParent returns ctx's span as the parent for later spans.
func (r *ChangeRecorder) WithParent(ctx context.Context) {
	r.ctx = ctx
}

// Publish implements pubsub.Publisher.
func (r *ChangeRecorder) Publish(_ pubsub.EventType, c history.Change) {
	if c.Op == history.OpEdit {
		r.edits++
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(AttrSessionID, r.session),
		attribute.String(AttrHistoryOp, string(c.Op)),
		attribute.Int(AttrUndoDepth, c.UndoDepth),
		attribute.Int(AttrRedoDepth, c.RedoDepth),
		attribute.Bool(AttrPending, c.Pending),
		attribute.Int(AttrGraphemes, uniseg.GraphemeClusterCount(c.Content)),
	}
	switch c.Op {
	case history.OpCheckpoint:
		attrs = append(attrs,
			attribute.String(AttrHistoryTrigger, string(c.Trigger)),
			attribute.Int(AttrEditsCoalesced, r.edits),
		)
		r.edits = 0
	case history.OpReset:
		r.edits = 0
	}

	_, span := r.tracer.Start(r.ctx, SpanPrefixHistory+string(c.Op),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	span.End()
}
