package tracing

// Span attribute keys.
const (
	AttrSessionID = "session.id"

	AttrHistoryOp        = "history.op"
	AttrHistoryTrigger   = "history.trigger"
	AttrUndoDepth        = "history.undo_depth"
	AttrRedoDepth        = "history.redo_depth"
	AttrPending          = "history.pending"
	AttrGraphemes        = "history.content.graphemes"
	AttrEditsCoalesced   = "history.edits_coalesced"
	AttrPolicyDebounceMs = "history.policy.debounce_ms"

	AttrReplayScript = "replay.script"
	AttrReplayEvents = "replay.events"
	AttrReplayIndex  = "replay.index"
	AttrReplayKind   = "replay.kind"

	AttrConfigPath = "config.path"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanPrefixHistory = "history."
	SpanReplayRun     = "replay.run"
	SpanReplayEvent   = "replay.event"
	SpanConfigReload  = "config.reload"
	SpanSession       = "editor.session"
)
