package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/logging"
	"github.com/Aman-CERP/cohorts/internal/output"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	noColor bool
	file    string
}

func newLogsCmd() *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View the debug log",
		Long: `View the log written by commands run with --debug.

By default, shows the last 50 lines of ~/.cohorts/logs/cohorts.log. Use -f
to follow new entries as they are written.`,
		Example: `  cohorts logs
  cohorts logs -n 200 --level warn
  cohorts logs -f --filter watch_`,
		Args:        validArgs(cobra.NoArgs),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogs(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level to show (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only show lines matching this regex")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().StringVar(&opts.file, "file", "", "Log file to read (default ~/.cohorts/logs/cohorts.log)")

	return cmd
}

func runLogs(ctx context.Context, stdout, stderr io.Writer, opts logsOptions) error {
	if opts.level != "" && !logging.ValidLevel(opts.level) {
		return cerrors.ValidationError(fmt.Sprintf("unknown log level %q", opts.level), nil).
			WithSuggestion("Use one of: debug, info, warn, error")
	}

	var pattern *regexp.Regexp
	if opts.filter != "" {
		var err error
		if pattern, err = regexp.Compile(opts.filter); err != nil {
			return cerrors.ValidationError("invalid filter pattern", err)
		}
	}

	path := opts.file
	if path == "" {
		path = logging.DefaultLogPath()
	}
	if _, err := os.Stat(path); err != nil {
		return cerrors.New(cerrors.ErrCodeReadFailed, "no log file", err).
			WithDetail("path", path).
			WithSuggestion("Run a command with --debug to start logging")
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: opts.noColor || !output.ShouldUseColor(stdout),
	}, stdout)

	_, _ = fmt.Fprintf(stderr, "Log file: %s\n", path)

	if !opts.follow {
		entries, err := viewer.Tail(path, opts.lines)
		if err != nil {
			return cerrors.New(cerrors.ErrCodeReadFailed, "cannot read log file", err).
				WithDetail("path", path)
		}
		viewer.Print(entries)
		return nil
	}

	_, _ = fmt.Fprintln(stderr, "Following... (Ctrl+C to stop)")

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() { errCh <- viewer.Follow(ctx, path, entries) }()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(stdout, viewer.FormatEntry(entry))
		case err := <-errCh:
			return err
		}
	}
}
