package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	cerrors "github.com/Aman-CERP/cohorts/internal/errors"
	"github.com/Aman-CERP/cohorts/internal/index"
	"github.com/Aman-CERP/cohorts/internal/output"
	"github.com/Aman-CERP/cohorts/internal/store"
)

// indexer returns the invocation's Indexer, configured from the loaded
// config. Watch-mode rebuilds share it and its parse cache.
func (a *app) indexer() *index.Indexer {
	if a.ix == nil {
		a.ix = index.New(
			index.WithOutputName(a.cfg.OutputName),
			index.WithIndent(a.cfg.Indent),
		)
	}
	return a.ix
}

// build indexes the data directory, prints the result line and, when
// sqlitePath is set, mirrors the records into SQLite. A failed mirror is
// reported as a warning; the JSON index is already written.
func (a *app) build(ctx context.Context, cmd *cobra.Command, sqlitePath string) error {
	res, err := a.indexer().Build(ctx, a.cfg.DataDir)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files into %s\n", res.Count, a.cfg.OutputPath()); err != nil {
		return err
	}

	if sqlitePath != "" {
		if err := mirror(ctx, sqlitePath, res.Records); err != nil {
			slog.Warn("store_mirror_failed", cerrors.LogAttrs(err)...)
			output.New(cmd.ErrOrStderr()).Warningf("SQLite mirror %s not updated: %v", sqlitePath, err)
		}
	}
	return nil
}

func mirror(ctx context.Context, path string, records []index.FileRecord) error {
	s, err := store.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	return s.Replace(ctx, records)
}

// loadIndex reads the configured index file.
func (a *app) loadIndex() ([]index.FileRecord, error) {
	return index.Load(a.cfg.OutputPath())
}
