package script

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/undopad/internal/diff"
)

// previewWidth bounds the content column of the step table.
const previewWidth = 32

// TextOptions controls WriteText.
type TextOptions struct {
	// Diff prints a word diff between consecutive undo snapshots and from
	// the newest snapshot to the final buffer.
	Diff bool
	// Steps prints the per-event table.
	Steps bool
}

// WriteText prints a human readable replay report.
func WriteText(w io.Writer, res Result, opts TextOptions) error {
	if opts.Steps {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "#\tAT\tEVENT\tCONTENT\tUNDO\tREDO\tPENDING")
		for _, s := range res.Steps {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
				s.Index, s.At, truncate(s.Event.String()), truncate(strconv.Quote(s.Content)),
				s.UndoDepth, s.RedoDepth, yesNo(s.Pending))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "final: %q\n", res.Final.Content)
	fmt.Fprintf(w, "undo (oldest first): %s\n", quoteAll(res.Final.Undo))
	fmt.Fprintf(w, "redo (next first):   %s\n", quoteAll(res.Final.Redo))
	fmt.Fprintf(w, "pending: %s\n", yesNo(res.Final.Pending))

	fmt.Fprintf(w, "checkpoints: %d\n", len(res.Checkpoints))
	for i, c := range res.Checkpoints {
		fmt.Fprintf(w, "  %d  %-13s %q\n", i+1, c.Trigger, c.Content)
	}

	if opts.Diff {
		fmt.Fprintln(w, "diffs:")
		snaps := append(append([]string{}, res.Final.Undo...), res.Final.Content)
		for i := 1; i < len(snaps); i++ {
			segs := diff.Words(snaps[i-1], snaps[i])
			label := strconv.Itoa(i)
			if i == len(snaps)-1 {
				label = "buffer"
			}
			fmt.Fprintf(w, "  %d→%s  %s  %s\n", i-1, label, diff.Summary(segs), diff.Render(segs, diff.PlainStyle()))
		}
	}
	return nil
}

func truncate(s string) string {
	return runewidth.Truncate(s, previewWidth, "…")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func quoteAll(ss []string) string {
	q := make([]string, len(ss))
	for i, s := range ss {
		q[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(q, ", ") + "]"
}

type reportYAML struct {
	Session     string           `yaml:"session"`
	Content     string           `yaml:"content"`
	Undo        []string         `yaml:"undo"`
	Redo        []string         `yaml:"redo"`
	Pending     bool             `yaml:"pending"`
	Checkpoints []checkpointYAML `yaml:"checkpoints"`
	Steps       []stepYAML       `yaml:"steps,omitempty"`
}

type checkpointYAML struct {
	Trigger string `yaml:"trigger"`
	Content string `yaml:"content"`
}

type stepYAML struct {
	Event     string `yaml:"event"`
	At        string `yaml:"at"`
	Content   string `yaml:"content"`
	UndoDepth int    `yaml:"undo_depth"`
	RedoDepth int    `yaml:"redo_depth"`
	Pending   bool   `yaml:"pending"`
}

// WriteYAML emits the final state, checkpoints and optionally the steps
// as a YAML document.
func WriteYAML(w io.Writer, res Result, withSteps bool) error {
	doc := reportYAML{
		Session: res.SessionID,
		Content: res.Final.Content,
		Undo:    nonNil(res.Final.Undo),
		Redo:    nonNil(res.Final.Redo),
		Pending: res.Final.Pending,
	}
	for _, c := range res.Checkpoints {
		doc.Checkpoints = append(doc.Checkpoints, checkpointYAML{Trigger: string(c.Trigger), Content: c.Content})
	}
	if withSteps {
		for _, s := range res.Steps {
			doc.Steps = append(doc.Steps, stepYAML{
				Event:     s.Event.String(),
				At:        s.At.String(),
				Content:   s.Content,
				UndoDepth: s.UndoDepth,
				RedoDepth: s.RedoDepth,
				Pending:   s.Pending,
			})
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
