package classify

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultReloadDelay coalesces the bursts of events editors produce on save.
const DefaultReloadDelay = 100 * time.Millisecond

// TableWatcher reloads a DomainTable whenever its file changes on disk.
//
// The containing directory is watched rather than the file, since many
// editors save by renaming a new file over the old one.
type TableWatcher struct {
	path  string
	table *DomainTable
	log   zerolog.Logger
	delay time.Duration

	// reloaded, if set, is called after every reload attempt.
	reloaded func(error)

	mu       sync.Mutex
	debounce *time.Timer
}

// NewTableWatcher returns a watcher that keeps table in sync with path.
func NewTableWatcher(path string, table *DomainTable, log zerolog.Logger) *TableWatcher {
	return &TableWatcher{
		path:  filepath.Clean(path),
		table: table,
		log:   log,
		delay: DefaultReloadDelay,
	}
}

// Run watches until ctx is cancelled.  It returns an error only if the watch
// could not be set up.
func (w *TableWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.log.Debug().Str("path", w.path).Msg("watching domain table")

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.debounce != nil {
				w.debounce.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Str("path", w.path).Msg("domain table watcher error")
		}
	}
}

func (w *TableWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, func() {
		err := w.Reload()
		if w.reloaded != nil {
			w.reloaded(err)
		}
	})
}

// Reload reads the file now.  On error the current table is kept.
func (w *TableWatcher) Reload() error {
	t, err := LoadDomainTable(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("keeping previous domain table")
		return err
	}
	w.table.Replace(t)
	w.log.Info().Str("path", w.path).Int("domains", t.Len()).Msg("reloaded domain table")
	return nil
}
