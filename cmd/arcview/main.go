package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kyaoi/arcview/internal/app"
	"github.com/kyaoi/arcview/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "arcview:", err)
		os.Exit(1)
	}
}

// globalOptions carries the persistent flags and what setup derives from
// them.
type globalOptions struct {
	configPath string
	logLevel   string
	logFile    string

	cfg     config.Config
	logger  *slog.Logger
	nav     *app.Navigator
	closers []io.Closer
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "arcview [path]",
		Short: "Browse directories and archives as one tree",
		Long: `arcview lists directories and the contents of zip based archives
side by side. Archives open like directories; leaving an archive returns
to the directory that holds it.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd, cmd == cmd.Root())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 1 {
				target = args[0]
			}
			return app.Run(opts.nav, filepath.Clean(target))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/arcview/config.ini)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFile, "log-file", "", "append logs to this file")

	root.AddCommand(newTreeCmd(opts), newLsCmd(opts), newConfigCmd(opts))
	return root
}

func (o *globalOptions) resolveConfigPath() error {
	if o.configPath != "" {
		return nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return fmt.Errorf("locate config: %w", err)
	}
	o.configPath = path
	return nil
}

// setup loads the config, installs the logger and creates the navigator.
// The browser owns the terminal, so it only logs to a file.
func (o *globalOptions) setup(cmd *cobra.Command, interactive bool) error {
	if err := o.resolveConfigPath(); err != nil {
		return err
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		level, err := config.ParseLevel(o.logLevel)
		if err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		cfg.LogLevel = level
	}
	if o.logFile != "" {
		cfg.LogFile = o.logFile
	}
	o.cfg = cfg

	var w io.Writer = io.Discard
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		o.closers = append(o.closers, f)
		w = f
	case !interactive && o.logLevel != "":
		w = cmd.ErrOrStderr()
	}
	o.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(o.logger)

	o.nav = app.NewNavigator(cfg, o.logger)
	o.logger.Debug("config loaded", slog.String("path", o.configPath))
	return nil
}

func (o *globalOptions) close() error {
	var first error
	for _, c := range o.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	o.closers = nil
	return first
}
