package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/undopad/internal/history"
	"github.com/zjrosen/undopad/internal/log"
	"github.com/zjrosen/undopad/internal/script"
)

var (
	replayDiff    bool
	replaySteps   bool
	replayFormat  string
	replayVerbose bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay an edit script and print the resulting history",
	Long: `Replay a scripted typing session on a virtual clock and print the buffer,
the undo and redo stacks and every checkpoint with the rule that took it.

The script's policy section overrides the history section of the config.

Example script:
  policy:
    debounce_delay: 1s
  events:
    - type: "hello"
    - wait: 1s
    - type: " world"
    - undo

Examples:
  undopad replay session.yaml
  undopad replay session.yaml --steps --diff
  undopad replay session.yaml --format yaml > state.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayDiff, "diff", false, "print word diffs between checkpoints")
	replayCmd.Flags().BoolVar(&replaySteps, "steps", false, "print the state after every event")
	replayCmd.Flags().StringVarP(&replayFormat, "format", "f", "text", "output format: text or yaml")
	replayCmd.Flags().BoolVarP(&replayVerbose, "verbose", "v", false, "log replay events to stderr")
}

// replayOptions is everything a replay needs besides the script.
type replayOptions struct {
	Base      history.Policy
	Format    string
	Diff      bool
	Steps     bool
	Tracer    trace.Tracer
	SessionID string
}

func runReplay(cmd *cobra.Command, args []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	if replayVerbose {
		log.InitWriter(cmd.ErrOrStderr())
		defer log.Reset()
	} else {
		cleanupLog, err := setupLogging(c, "")
		if err != nil {
			return err
		}
		defer cleanupLog()
	}

	provider, shutdownTracing, err := setupTracing(c)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	return replayFile(cmd.Context(), cmd.OutOrStdout(), args[0], replayOptions{
		Base:   c.History.Policy(),
		Format: replayFormat,
		Diff:   replayDiff,
		Steps:  replaySteps,
		Tracer: provider.Tracer(),
	})
}

// replayFile loads the script at path, runs it and writes the report to w.
func replayFile(ctx context.Context, w io.Writer, path string, opts replayOptions) error {
	if opts.Format != "text" && opts.Format != "yaml" {
		return fmt.Errorf("unknown format %q (want text or yaml)", opts.Format)
	}

	s, err := script.Load(path)
	if err != nil {
		return err
	}

	var runnerOpts []script.RunnerOption
	if opts.Tracer != nil {
		runnerOpts = append(runnerOpts, script.WithTracer(opts.Tracer))
	}
	if opts.SessionID != "" {
		runnerOpts = append(runnerOpts, script.WithSessionID(opts.SessionID))
	}

	res, err := script.NewRunner(opts.Base, runnerOpts...).Run(ctx, s)
	if err != nil {
		return fmt.Errorf("replaying %s: %w", path, err)
	}

	if opts.Format == "yaml" {
		return script.WriteYAML(w, res, opts.Steps)
	}
	return script.WriteText(w, res, script.TextOptions{Diff: opts.Diff, Steps: opts.Steps})
}
