// Package cmd provides the CLI commands for cohorts.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/cohorts/internal/config"
	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/index"
	"github.com/Aman-CERP/cohorts/internal/logging"
	"github.com/Aman-CERP/cohorts/internal/profiling"
	"github.com/Aman-CERP/cohorts/pkg/version"
)

// skipConfig marks commands that run without loading configuration.
const skipConfig = "cohorts/skip-config"

// app is the state shared by every command of one invocation.
type app struct {
	debug   bool
	dir     string
	profile profiling.Options

	cfg      *config.Config
	ix       *index.Indexer
	session  *profiling.Session
	cleanups []func()
}

// NewRootCmd creates the root command for the cohorts CLI.
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "cohorts",
		Short: "Index cohort dataset files by year, district and subject",
		Long: `cohorts scans a data directory for dataset files named
<year>_<district words...>_<subject>.csv and writes files.json, an index
of their year, district and subject that dashboards use to find them.

Run 'cohorts' with no arguments to index ./data.`,
		Version:       version.Version,
		Args:          validArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.build(cmd.Context(), cmd, a.cfg.SQLitePath)
		},
	}

	cmd.SetVersionTemplate("cohorts version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cerrors.ValidationError(err.Error(), err)
	})

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to ~/.cohorts/logs/")
	cmd.PersistentFlags().StringVar(&a.dir, "dir", "", "Data directory (default from config, \"data\")")
	cmd.PersistentFlags().StringVar(&a.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&a.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = a.setup
	cmd.PersistentPostRunE = func(*cobra.Command, []string) error {
		return a.teardown()
	}

	cmd.AddCommand(newIndexCmd(a))
	cmd.AddCommand(newOptionsCmd(a))
	cmd.AddCommand(newPathCmd(a))
	cmd.AddCommand(newFindCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd, a
}

// setup loads configuration, installs the logger and starts profiling.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[skipConfig] == "" {
		wd, err := os.Getwd()
		if err != nil {
			return cerrors.InternalError("cannot determine working directory", err)
		}
		cfg, err := config.Load(wd)
		if err != nil {
			return err
		}
		if a.dir != "" {
			cfg.DataDir = a.dir
		}
		a.cfg = cfg
	}

	if a.debug {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return fmt.Errorf("failed to setup debug logging: %w", err)
		}
		a.cleanups = append(a.cleanups, cleanup)
		slog.SetDefault(logger)
		slog.Info("debug_logging_enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	} else {
		level := "warn"
		if a.cfg != nil {
			level = a.cfg.LogLevel
		}
		slog.SetDefault(logging.NewConsoleLogger(cmd.ErrOrStderr(), level))
	}

	if a.profile.Enabled() {
		s, err := profiling.Start(a.profile)
		if err != nil {
			return err
		}
		a.session = s
	}

	return nil
}

// teardown stops profiling and flushes logs. Safe to call more than once.
func (a *app) teardown() error {
	err := a.session.Stop()
	a.session = nil

	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
	return err
}

// validArgs reports positional argument errors as invalid input.
func validArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return cerrors.ValidationError(err.Error(), err).
				WithSuggestion(fmt.Sprintf("Run '%s --help' for usage", cmd.CommandPath()))
		}
		return nil
	}
}

// Execute runs the root command, printing any error to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, a := newRootCmd()
	err := cmd.ExecuteContext(ctx)

	// PersistentPostRunE is skipped when a command fails.
	if terr := a.teardown(); terr != nil && err == nil {
		err = terr
	}
	if err != nil {
		slog.Debug("command_failed", cerrors.LogAttrs(err)...)
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), cerrors.FormatForCLI(err))
	}
	return err
}
