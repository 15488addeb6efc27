package script

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/undopad/internal/history"
	"github.com/zjrosen/undopad/internal/log"
	"github.com/zjrosen/undopad/internal/pubsub"
	"github.com/zjrosen/undopad/internal/timer"
	"github.com/zjrosen/undopad/internal/tracing"
)

// epoch is the virtual start time of every replay.
var epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Step is the state after one script event.
type Step struct {
	Index     int
	Event     Event
	At        time.Duration // virtual time since start
	Content   string
	UndoDepth int
	RedoDepth int
	Pending   bool
	Changed   bool // the command changed the buffer (undo/redo/backspace)
}

// Result is the outcome of a replay.
type Result struct {
	SessionID string
	Policy    history.Policy
	Steps     []Step
	Final     history.State
	// Checkpoints lists every committed checkpoint in order, with trigger.
	Checkpoints []history.Change
}

// Runner replays scripts on a virtual clock.
type Runner struct {
	base      history.Policy
	tracer    trace.Tracer
	sessionID string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithTracer records a span per event and per history operation.
func WithTracer(t trace.Tracer) RunnerOption {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithSessionID sets the session id attached to logs and spans.
func WithSessionID(id string) RunnerOption {
	return func(r *Runner) {
		r.sessionID = id
	}
}

// NewRunner creates a runner. base is the policy a script's overrides
// apply to.
func NewRunner(base history.Policy, opts ...RunnerOption) *Runner {
	r := &Runner{
		base:      base,
		tracer:    noop.NewTracerProvider().Tracer("noop"),
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays s from an empty buffer. The returned error is only non-nil
// when the script's policy is invalid or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, s Script) (Result, error) {
	policy, err := s.Policy.Apply(r.base)
	if err != nil {
		return Result{}, err
	}

	ctx, span := r.tracer.Start(ctx, tracing.SpanReplayRun, trace.WithAttributes(
		attribute.String(tracing.AttrSessionID, r.sessionID),
		attribute.String(tracing.AttrReplayScript, s.Name),
		attribute.Int(tracing.AttrReplayEvents, len(s.Events)),
		attribute.Int64(tracing.AttrPolicyDebounceMs, policy.DebounceDelay.Milliseconds()),
	))
	defer span.End()

	res := Result{SessionID: r.sessionID, Policy: policy}
	recorder := tracing.NewChangeRecorder(ctx, r.tracer, r.sessionID)
	collect := pubsub.PublisherFunc[history.Change](func(_ pubsub.EventType, c history.Change) {
		if c.Op == history.OpCheckpoint {
			res.Checkpoints = append(res.Checkpoints, c)
		}
	})

	clock := timer.NewManual(epoch)
	mgr := history.NewManager(clock,
		history.WithPolicy(policy),
		history.WithPublisher(pubsub.MultiPublisher[history.Change](recorder, collect)),
	)
	defer mgr.Close()

	log.SetSession(r.sessionID)
	log.Info(log.CatReplay, "Replay started", "script", s.Name, "events", len(s.Events))

	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return res, fmt.Errorf("replay cancelled at event %d: %w", i, err)
		}

		evCtx, evSpan := r.tracer.Start(ctx, tracing.SpanReplayEvent, trace.WithAttributes(
			attribute.Int(tracing.AttrReplayIndex, i),
			attribute.String(tracing.AttrReplayKind, string(ev.Kind)),
		))
		recorder.WithParent(evCtx)

		before := mgr.Content()
		apply(mgr, clock, ev)
		evSpan.End()

		res.Steps = append(res.Steps, Step{
			Index:     i,
			Event:     ev,
			At:        clock.Now().Sub(epoch),
			Content:   mgr.Content(),
			UndoDepth: mgr.UndoDepth(),
			RedoDepth: mgr.RedoDepth(),
			Pending:   mgr.Pending(),
			Changed:   before != mgr.Content(),
		})
		log.Debug(log.CatReplay, "Event applied", "index", i, "event", ev.String(), "undo_depth", mgr.UndoDepth())
	}

	res.Final = mgr.State()
	span.SetStatus(codes.Ok, "")
	log.Info(log.CatReplay, "Replay finished", "checkpoints", len(res.Checkpoints))
	return res, nil
}

func apply(mgr *history.Manager, clock *timer.Manual, ev Event) {
	switch ev.Kind {
	case KindEdit:
		mgr.SubmitEdit(ev.Text)
	case KindType:
		content := mgr.Content()
		g := uniseg.NewGraphemes(ev.Text)
		first := true
		for g.Next() {
			if !first {
				clock.Advance(ev.Interval)
			}
			first = false
			content += g.Str()
			mgr.SubmitEdit(content)
		}
	case KindWait:
		clock.Advance(ev.Wait)
	case KindBackspace:
		for range ev.Count {
			// Mirrors the editor: the deletion checkpoint comes first and
			// an empty buffer has nothing to delete.
			mgr.Deletion()
			if content := mgr.Content(); content != "" {
				mgr.SubmitEdit(history.TrimLastGrapheme(content))
			}
		}
	case KindUndo:
		for range ev.Count {
			mgr.Undo()
		}
	case KindRedo:
		for range ev.Count {
			mgr.Redo()
		}
	case KindCheckpoint:
		for range ev.Count {
			mgr.Checkpoint()
		}
	}
}
