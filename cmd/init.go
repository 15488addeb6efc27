package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/zjrosen/undopad/internal/config"
)

var (
	initForce bool
	initLocal bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config, or update its history section",
	Long: `Write the default config file with every option commented.

When the file exists, history flags update only the history section and
keep the rest of the file, comments included. Without history flags an
existing file is left alone unless --force is given.

Examples:
  undopad init                          # ~/.config/undopad/config.yaml
  undopad init --local                  # .undopad/config.yaml
  undopad init --debounce 500ms --max-depth 100`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().BoolVar(&initLocal, "local", false, "write .undopad/config.yaml in the current directory")

	addHistoryFlags(initCmd.Flags())
}

// addHistoryFlags registers one flag per history option.
func addHistoryFlags(fs *pflag.FlagSet) {
	d := config.Defaults().History
	fs.Duration("debounce", d.DebounceDelay, "idle time before a debounce checkpoint (0 disables)")
	fs.Bool("seed", d.SeedInitialSnapshot, "start the undo stack with an empty snapshot")
	fs.Bool("edit-time-capture", d.DebounceCapturesEditTimeContent, "debounce saves the text as of the arming edit")
	fs.Bool("dedup", d.DedupCheckpoints, "skip checkpoints equal to the newest one")
	fs.Bool("checkpoint-on-deletion", d.CheckpointOnDeletion, "backspace saves the text before it")
	fs.Bool("cancel-on-command", d.CancelPendingOnCommand, "undo and redo cancel a pending debounce")
	fs.Int("max-depth", d.MaxDepth, "undo stack limit (0 = unlimited)")
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := initTargetPath()
	return initConfigFile(cmd.OutOrStdout(), path, initForce, historyFlagOverrides(cmd.Flags()))
}

// initTargetPath picks the file init writes: --config, --local, or the
// user config.
func initTargetPath() string {
	switch {
	case cfgFile != "":
		return cfgFile
	case initLocal:
		return localConfigPath
	default:
		return filepath.Join(config.DefaultConfigDir(), "config.yaml")
	}
}

// historyOverride changes one field of the history section.
type historyOverride func(*config.HistoryConfig)

// historyFlagOverrides returns one override per history flag set on the
// command line.
func historyFlagOverrides(fs *pflag.FlagSet) []historyOverride {
	var out []historyOverride
	boolFlag := func(name string, set func(*config.HistoryConfig, bool)) {
		if !fs.Changed(name) {
			return
		}
		v, _ := fs.GetBool(name)
		out = append(out, func(h *config.HistoryConfig) { set(h, v) })
	}

	if fs.Changed("debounce") {
		v, _ := fs.GetDuration("debounce")
		out = append(out, func(h *config.HistoryConfig) { h.DebounceDelay = v })
	}
	boolFlag("seed", func(h *config.HistoryConfig, v bool) { h.SeedInitialSnapshot = v })
	boolFlag("edit-time-capture", func(h *config.HistoryConfig, v bool) { h.DebounceCapturesEditTimeContent = v })
	boolFlag("dedup", func(h *config.HistoryConfig, v bool) { h.DedupCheckpoints = v })
	boolFlag("checkpoint-on-deletion", func(h *config.HistoryConfig, v bool) { h.CheckpointOnDeletion = v })
	boolFlag("cancel-on-command", func(h *config.HistoryConfig, v bool) { h.CancelPendingOnCommand = v })
	if fs.Changed("max-depth") {
		v, _ := fs.GetInt("max-depth")
		out = append(out, func(h *config.HistoryConfig) { h.MaxDepth = v })
	}
	return out
}

// initConfigFile writes the default config at path when it is missing (or
// force is set), then applies overrides to its history section.
func initConfigFile(w io.Writer, path string, force bool, overrides []historyOverride) error {
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if statErr != nil && !os.IsNotExist(statErr) {
		return fmt.Errorf("checking %s: %w", path, statErr)
	}

	if exists && !force && len(overrides) == 0 {
		return fmt.Errorf("%s already exists (use --force to overwrite, or history flags to update it)", path)
	}

	if !exists || force {
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(w, "Wrote %s\n", path)
	}

	if len(overrides) == 0 {
		return nil
	}

	current, err := config.Load(path)
	if err != nil {
		return err
	}
	h := current.History
	for _, apply := range overrides {
		apply(&h)
	}
	if err := config.SaveHistory(path, h); err != nil {
		return fmt.Errorf("updating %s: %w", path, err)
	}
	fmt.Fprintf(w, "Updated history in %s (debounce %s, max depth %s)\n",
		path, h.DebounceDelay, depthLabel(h.MaxDepth))
	return nil
}

func depthLabel(n int) string {
	if n == 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
