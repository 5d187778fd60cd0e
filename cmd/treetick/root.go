package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joeycumines/treetick/internal/bt"
	"github.com/joeycumines/treetick/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// app is the state shared by every command of one invocation.
type app struct {
	stdout, stderr io.Writer

	configPath string
	logLevel   string
	colorMode  string

	config   *config.Config
	settings config.Settings
	logger   *slog.Logger
	color    bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(&app{stdout: stdout, stderr: stderr})
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "treetick",
		Short: "Run behaviour trees described in YAML",
		Long: `treetick builds behaviour trees, with their blackboards, from YAML tree
files and ticks them periodically, rendering each tick that changes the tree.

Configuration is read from $` + config.EnvConfig + ` or ~/.treetick/config; see
"treetick config" for the available options.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup() },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to the config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.colorMode, "color", "", "colour mode: auto, always, never")

	root.AddCommand(
		newRunCommand(a),
		newShowCommand(a),
		newValidateCommand(a),
		newConfigCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads the configuration and applies flag overrides.
func (a *app) setup() error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	a.configPath = path

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	a.config = cfg
	if a.settings, err = cfg.Settings(); err != nil {
		return err
	}

	if a.logLevel != "" {
		if err := a.settings.LogLevel.UnmarshalText([]byte(a.logLevel)); err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
	}
	mode := a.settings.Color
	if a.colorMode != "" {
		mode = strings.ToLower(a.colorMode)
	}
	switch mode {
	case "always":
		a.color = true
	case "never":
		a.color = false
	case "auto":
		a.color = isTerminal(a.stdout)
	default:
		return fmt.Errorf("invalid --color %q: expected auto, always or never", a.colorMode)
	}

	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: a.settings.LogLevel}))
	bt.SetLogger(a.logger)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(a.stdout, "treetick %s\n", version)
			return err
		},
	}
}
