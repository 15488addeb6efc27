package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/undopad/internal/history"
)

func newRecordingTracer(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrMap(kvs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func TestChangeRecorder_SpansPerOperation(t *testing.T) {
	sr, tp := newRecordingTracer(t)
	rec := NewChangeRecorder(context.Background(), tp.Tracer("test"), "session-1")

	m := history.NewManager(nil, history.WithPublisher(rec))
	m.SubmitEdit("h")
	m.SubmitEdit("hi")
	m.SubmitEdit("hi ")
	m.Undo()
	m.Redo()

	spans := sr.Ended()
	require.Len(t, spans, 3)
	require.Equal(t, "history.checkpoint", spans[0].Name())
	require.Equal(t, "history.undo", spans[1].Name())
	require.Equal(t, "history.redo", spans[2].Name())

	attrs := attrMap(spans[0].Attributes())
	require.Equal(t, "session-1", attrs[AttrSessionID])
	require.Equal(t, "word-boundary", attrs[AttrHistoryTrigger])
	require.EqualValues(t, 2, attrs[AttrEditsCoalesced], "edits before the boundary edit")
	require.EqualValues(t, 1, attrs[AttrUndoDepth])
	require.EqualValues(t, 2, attrs[AttrGraphemes])
}

func TestChangeRecorder_ParentSpan(t *testing.T) {
	sr, tp := newRecordingTracer(t)
	tracer := tp.Tracer("test")

	ctx, root := tracer.Start(context.Background(), SpanReplayRun)
	rec := NewChangeRecorder(context.Background(), tracer, "s")
	rec.WithParent(ctx)

	m := history.NewManager(nil, history.WithPublisher(rec))
	m.Checkpoint()
	root.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, root.SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestChangeRecorder_ResetClearsEditCount(t *testing.T) {
	sr, tp := newRecordingTracer(t)
	rec := NewChangeRecorder(context.Background(), tp.Tracer("test"), "s")

	m := history.NewManager(nil, history.WithPublisher(rec))
	m.SubmitEdit("a")
	m.Reset()
	m.SubmitEdit("b")
	m.Checkpoint()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "history.reset", spans[0].Name())
	require.EqualValues(t, 1, attrMap(spans[1].Attributes())[AttrEditsCoalesced])
}
