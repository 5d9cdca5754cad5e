package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"cinema-booking-cli/app"
	"cinema-booking-cli/config"
	"cinema-booking-cli/logging"
	"cinema-booking-cli/tui"
)

// BuildInfo is stamped by the linker in main.
type BuildInfo struct {
	Version string
	Commit  string
}

type rootOptions struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	logLevel   string
	logFile    string
}

// NewRootCommand builds the command tree. Without a subcommand it starts the TUI.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           config.AppName,
		Short:         "Cinema booking client",
		Long:          `Browse movies and screenings, book seats and manage your bookings from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				_, err := tea.NewProgram(tui.New(a), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return err
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file (default: $"+config.EnvConfig+" or the user config dir)")
	flags.StringVar(&opts.baseURL, "base-url", config.DefaultBaseURL, "backend base URL")
	flags.DurationVar(&opts.timeout, "timeout", config.DefaultTimeout, "per-request timeout")
	flags.StringVar(&opts.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&opts.logFile, "log-file", "", "log file (default: the user cache dir)")

	root.AddCommand(
		newMoviesCommand(opts),
		newScreeningsCommand(opts),
		newTopCommand(opts),
		newStatsCommand(opts),
		newRegisterCommand(opts),
		newBookingsCommand(opts),
		newBookCommand(opts),
		newVersionCommand(build),
	)
	return root
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, build BuildInfo, args []string, stdout io.Writer, stderr io.Writer) error {
	root := NewRootCommand(build)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newVersionCommand(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s", config.AppName, build.Version)
			if build.Commit != "none" && build.Commit != "" {
				fmt.Fprintf(out, " (%s)", build.Commit)
			}
			fmt.Fprintln(out)
		},
	}
}

// withApp loads configuration, builds the core and runs fn.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	cfg, err = cfg.Apply(overridesFrom(cmd.Flags(), opts))
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting", "command", cmd.Name(), "base_url", cfg.BaseURL, "timeout", cfg.Timeout)
	return fn(cmd.Context(), app.New(cfg, logger))
}

// overridesFrom keeps only the flags the user actually set, so that config
// files and the environment are not shadowed by flag defaults.
func overridesFrom(flags *pflag.FlagSet, opts *rootOptions) config.Overrides {
	var o config.Overrides
	if flags.Changed("base-url") {
		o.BaseURL = &opts.baseURL
	}
	if flags.Changed("timeout") {
		o.Timeout = &opts.timeout
	}
	if flags.Changed("log-level") {
		o.LogLevel = &opts.logLevel
	}
	if flags.Changed("log-file") {
		o.LogFile = &opts.logFile
	}
	return o
}
