// Package script parses replay scripts and drives a history manager
// through them on a virtual clock.
//
// A script is a YAML document:
//
//	policy:
//	  debounce_delay: 500ms
//	events:
//	  - edit: "a"
//	  - type: "hello world"
//	    interval: 100ms
//	  - wait: 1s
//	  - backspace
//	  - undo
//	  - redo
//	  - checkpoint
package script

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/undopad/internal/history"
)

// Kind is the type of a script event.
type Kind string

const (
	KindEdit       Kind = "edit"
	KindType       Kind = "type"
	KindWait       Kind = "wait"
	KindBackspace  Kind = "backspace"
	KindUndo       Kind = "undo"
	KindRedo       Kind = "redo"
	KindCheckpoint Kind = "checkpoint"
)

// DefaultInterval is the virtual time between keystrokes of a type event.
const DefaultInterval = 50 * time.Millisecond

// Event is one scripted action.
type Event struct {
	Kind     Kind
	Text     string        // edit, type
	Interval time.Duration // type
	Wait     time.Duration // wait
	Count    int           // backspace, undo, redo; at least 1
}

func (e Event) String() string {
	switch e.Kind {
	case KindEdit, KindType:
		return fmt.Sprintf("%s %q", e.Kind, e.Text)
	case KindWait:
		return fmt.Sprintf("wait %s", e.Wait)
	default:
		if e.Count > 1 {
			return fmt.Sprintf("%s x%d", e.Kind, e.Count)
		}
		return string(e.Kind)
	}
}

// PolicyOverrides holds the policy keys a script sets. Unset keys keep
// the base policy.
type PolicyOverrides struct {
	DebounceDelay                   *string `yaml:"debounce_delay"`
	SeedInitialSnapshot             *bool   `yaml:"seed_initial_snapshot"`
	DebounceCapturesEditTimeContent *bool   `yaml:"debounce_captures_edit_time_content"`
	DedupCheckpoints                *bool   `yaml:"dedup_checkpoints"`
	CheckpointOnDeletion            *bool   `yaml:"checkpoint_on_deletion"`
	CancelPendingOnCommand          *bool   `yaml:"cancel_pending_on_command"`
	MaxDepth                        *int    `yaml:"max_depth"`
}

// Apply returns base with the overrides applied.
func (o PolicyOverrides) Apply(base history.Policy) (history.Policy, error) {
	p := base
	if o.DebounceDelay != nil {
		d, err := time.ParseDuration(*o.DebounceDelay)
		if err != nil {
			return base, fmt.Errorf("policy.debounce_delay: %w", err)
		}
		p.DebounceDelay = d
	}
	setBool(&p.SeedInitialSnapshot, o.SeedInitialSnapshot)
	setBool(&p.DebounceCapturesEditTimeContent, o.DebounceCapturesEditTimeContent)
	setBool(&p.DedupCheckpoints, o.DedupCheckpoints)
	setBool(&p.CheckpointOnDeletion, o.CheckpointOnDeletion)
	setBool(&p.CancelPendingOnCommand, o.CancelPendingOnCommand)
	if o.MaxDepth != nil {
		p.MaxDepth = *o.MaxDepth
	}
	if err := p.Validate(); err != nil {
		return base, fmt.Errorf("policy: %w", err)
	}
	return p, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// Script is a parsed replay script.
type Script struct {
	Name   string
	Policy PolicyOverrides
	Events []Event
}

type document struct {
	Policy PolicyOverrides `yaml:"policy"`
	Events []yaml.Node     `yaml:"events"`
}

// Load reads and parses the script at path.
func Load(path string) (Script, error) {
	f, err := os.Open(path) // #nosec G304 -- user supplied script path
	if err != nil {
		return Script{}, fmt.Errorf("opening script: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Parse(f)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	s.Name = path
	return s, nil
}

// Parse decodes a script. Errors name the zero-based event index.
func Parse(r io.Reader) (Script, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return Script{}, fmt.Errorf("empty script")
		}
		return Script{}, fmt.Errorf("parsing script: %w", err)
	}

	s := Script{Policy: doc.Policy, Events: make([]Event, 0, len(doc.Events))}
	for i := range doc.Events {
		ev, err := parseEvent(&doc.Events[i])
		if err != nil {
			return Script{}, fmt.Errorf("event %d (line %d): %w", i, doc.Events[i].Line, err)
		}
		s.Events = append(s.Events, ev)
	}
	return s, nil
}

func parseEvent(n *yaml.Node) (Event, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		k := Kind(n.Value)
		switch k {
		case KindBackspace, KindUndo, KindRedo, KindCheckpoint:
			return Event{Kind: k, Count: 1}, nil
		case KindEdit, KindType, KindWait:
			return Event{}, fmt.Errorf("%s needs a value", k)
		}
		return Event{}, fmt.Errorf("unknown event %q", n.Value)
	case yaml.MappingNode:
		return parseMapping(n)
	default:
		return Event{}, fmt.Errorf("event must be a name or a mapping")
	}
}

func parseMapping(n *yaml.Node) (Event, error) {
	var ev Event
	var interval *yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		if key == "interval" {
			interval = val
			continue
		}
		if ev.Kind != "" {
			return Event{}, fmt.Errorf("event has both %s and %s", ev.Kind, key)
		}
		ev.Kind = Kind(key)

		switch ev.Kind {
		case KindEdit, KindType:
			if val.Kind != yaml.ScalarNode {
				return Event{}, fmt.Errorf("%s value must be a string", key)
			}
			ev.Text = val.Value
		case KindWait:
			d, err := parseDuration(val)
			if err != nil {
				return Event{}, fmt.Errorf("wait: %w", err)
			}
			ev.Wait = d
		case KindBackspace, KindUndo, KindRedo, KindCheckpoint:
			if err := val.Decode(&ev.Count); err != nil || ev.Count < 1 {
				return Event{}, fmt.Errorf("%s count must be a positive integer", key)
			}
		default:
			return Event{}, fmt.Errorf("unknown event %q", key)
		}
	}

	if ev.Kind == "" {
		return Event{}, fmt.Errorf("empty event")
	}
	if interval != nil {
		if ev.Kind != KindType {
			return Event{}, fmt.Errorf("interval only applies to type")
		}
		d, err := parseDuration(interval)
		if err != nil {
			return Event{}, fmt.Errorf("interval: %w", err)
		}
		ev.Interval = d
	} else if ev.Kind == KindType {
		ev.Interval = DefaultInterval
	}
	return ev, nil
}

func parseDuration(n *yaml.Node) (time.Duration, error) {
	d, err := time.ParseDuration(n.Value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}
