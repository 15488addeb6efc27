package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/undopad/internal/config"
	"github.com/zjrosen/undopad/internal/log"
	"github.com/zjrosen/undopad/internal/tracing"
	"github.com/zjrosen/undopad/internal/ui/editor"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const localConfigPath = ".undopad/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	cfgErr    error
)

var rootCmd = &cobra.Command{
	Use:   "undopad",
	Short: "A text pad with word-level undo and redo",
	Long: `A terminal text pad whose undo history is grouped the way people type:
a checkpoint is taken at word boundaries, after a pause in typing, before a
backspace and on demand. ctrl+z undoes and ctrl+y redoes.`,
	Version:       version,
	SilenceUsage:  true,
	RunE:          runEditor,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .undopad/config.yaml, then ~/.config/undopad/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log and enable the log pane (also UNDOPAD_DEBUG)")
	rootCmd.Flags().Duration("debounce", 0,
		"override history.debounce_delay for this session")

	_ = viper.BindPFlag("history.debounce_delay", rootCmd.Flags().Lookup("debounce"))
}

func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .undopad/config.yaml (current directory)
		// 2. ~/.config/undopad/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.AddConfigPath(config.DefaultConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cfgErr = fmt.Errorf("reading config: %w", err)
			return
		}
		// No config file anywhere: defaults apply, and the editor writes
		// the user default on start (see ensureConfigFile).
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		cfgErr = fmt.Errorf("decoding config: %w", err)
	}
}

// ensureConfigFile returns the config file in use. When none was found
// the user default is written so there is a file to edit and watch. An
// empty result means the default could not be written.
func ensureConfigFile() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	defaultPath := filepath.Join(config.DefaultConfigDir(), "config.yaml")
	if err := config.WriteDefaultConfig(defaultPath); err != nil {
		// Continue with defaults (no config file)
		return ""
	}
	return defaultPath
}

// loadedConfig returns the config read by initConfig, validated.
func loadedConfig() (config.Config, error) {
	if cfgErr != nil {
		return config.Config{}, cfgErr
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// debugEnabled reports whether debug logging was requested.
func debugEnabled() bool {
	return debugFlag || os.Getenv("UNDOPAD_DEBUG") != ""
}

// setupLogging opens the debug log when debug mode is on. The returned
// cleanup is never nil.
func setupLogging(c config.Config, session string) (func(), error) {
	if !debugEnabled() {
		return func() {}, nil
	}
	logPath := c.Log.Path
	if logPath == "" {
		logPath = log.DefaultPath()
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(c.Log.Level))
	log.SetSession(session)
	log.Info(log.CatConfig, "undopad starting", "version", version, "logPath", logPath)
	return cleanup, nil
}

// setupTracing creates the trace provider. The returned shutdown flushes
// pending spans and is never nil.
func setupTracing(c config.Config) (*tracing.Provider, func(), error) {
	provider, err := tracing.NewProvider(tracing.FromConfig(c.Tracing))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tracing: %w", err)
	}
	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			log.ErrorErr(log.CatTrace, "Tracing shutdown failed", err)
		}
	}
	if !provider.Enabled() {
		log.Debug(log.CatTrace, "Tracing disabled")
	}
	return provider, shutdown, nil
}

func runEditor(_ *cobra.Command, _ []string) error {
	c, err := loadedConfig()
	if err != nil {
		return err
	}

	session := uuid.NewString()
	cleanupLog, err := setupLogging(c, session)
	if err != nil {
		return err
	}
	defer cleanupLog()

	provider, shutdownTracing, err := setupTracing(c)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	zone.NewGlobal()
	defer zone.Close()

	model := editor.New(editor.Options{
		Config:     c,
		ConfigPath: ensureConfigFile(),
		Debug:      debugEnabled(),
		Tracer:     provider.Tracer(),
		SessionID:  session,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Stops the debounce loop and config watcher
	model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
