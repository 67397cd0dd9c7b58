// Package watcher turns file system activity in a data directory into
// debounced rebuild signals.
//
// A DirWatcher follows one directory (not its subdirectories) with
// fsnotify, keeps only events for dataset files, and coalesces bursts into
// batches. Watch pairs a DirWatcher with a rebuild loop so that builds run
// one at a time, after each quiet window:
//
//	err := watcher.Watch(ctx, "data", watcher.Options{
//	    Debounce:    500 * time.Millisecond,
//	    IgnoreNames: []string{"files.json"},
//	}, func(ctx context.Context, batch []watcher.FileEvent) error {
//	    _, err := ix.Build(ctx, "data")
//	    return err
//	})
package watcher
