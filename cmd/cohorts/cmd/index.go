package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/watcher"
)

func newIndexCmd(a *app) *cobra.Command {
	var (
		watch      bool
		sqlitePath string
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build files.json for the data directory",
		Long: `Scan the data directory for dataset files and write the index file.

Every file named <year>_<district words...>_<subject>.csv becomes one
record. Other files are ignored; the previous index is replaced.

With --watch, the index is rebuilt whenever dataset files change, until
interrupted. With --sqlite, the records are also copied into the files
table of a SQLite database.`,
		Example: `  # Index ./data
  cohorts index

  # Index another directory and keep it up to date
  cohorts index --dir ./exports --watch

  # Also mirror into SQLite
  cohorts index --sqlite cohorts.db`,
		Args: validArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("sqlite") {
				sqlitePath = a.cfg.SQLitePath
			}
			if err := a.build(cmd.Context(), cmd, sqlitePath); err != nil {
				return err
			}
			if !watch {
				return nil
			}
			return a.watch(cmd, sqlitePath)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when dataset files change")
	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "Also write records to this SQLite database")

	return cmd
}

// watch rebuilds after each burst of dataset file changes until the
// command's context is cancelled.
func (a *app) watch(cmd *cobra.Command, sqlitePath string) error {
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes (Ctrl+C to stop)\n", a.cfg.DataDir)

	opts := watcher.Options{
		Debounce:    a.cfg.DebounceDuration(),
		IgnoreNames: []string{a.cfg.OutputName},
	}

	err := watcher.Watch(cmd.Context(), a.cfg.DataDir, opts, func(ctx context.Context, batch []watcher.FileEvent) error {
		slog.Info("watch_rebuild", slog.Int("changes", len(batch)))
		if err := a.build(ctx, cmd, sqlitePath); err != nil {
			if ctx.Err() != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.ErrOrStderr(), cerrors.FormatForCLI(err))
			return err
		}
		return nil
	})
	if err != nil {
		return cerrors.New(cerrors.ErrCodeReadFailed,
			fmt.Sprintf("cannot watch %s", a.cfg.DataDir), err)
	}
	return nil
}
