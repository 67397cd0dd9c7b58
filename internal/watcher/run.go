package watcher

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// RebuildFunc is called once per debounced batch.
type RebuildFunc func(ctx context.Context, batch []FileEvent) error

// Watch follows dir and calls rebuild after each quiet window until ctx is
// done. One goroutine pumps events while another runs rebuilds, so
// rebuilds never overlap. A failing rebuild is logged and watching goes on.
// Watch returns nil when ctx is cancelled and ErrClosed when the watcher
// stops by itself.
func Watch(ctx context.Context, dir string, opts Options, rebuild RebuildFunc) error {
	w, err := NewDirWatcher(dir, opts)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(gctx)
	})

	g.Go(func() error {
		return rebuildLoop(gctx, w, rebuild)
	})

	return g.Wait()
}

func rebuildLoop(ctx context.Context, w *DirWatcher, rebuild RebuildFunc) error {
	batches := w.Batches()
	errs := w.Errors()

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrClosed
			}
			slog.Debug("watch_rebuild", slog.Int("changes", len(batch)))
			if err := rebuild(ctx, batch); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Warn("watch_rebuild_failed", slog.String("error", err.Error()))
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("watch_error", slog.String("error", err.Error()))
		}
	}
}
