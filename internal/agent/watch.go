package agent

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/musterio/muster/internal/logger"
	"github.com/musterio/muster/pkg/journal"
)

// watchRoster sweeps whenever the roster changes on disk. Events are
// debounced so an editor's save storm or a batch of file copies triggers
// one sweep, not one per write.
func (a *Agent) watchRoster(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create roster watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	info, err := os.Stat(a.opts.RosterPath)
	if err != nil {
		return fmt.Errorf("failed to stat roster path %s: %w", a.opts.RosterPath, err)
	}

	// For a single roster file, watch its directory: editors and config
	// management replace files by rename, and a watch on the old inode
	// goes quiet after the swap.
	watchDir := a.opts.RosterPath
	var rosterFile string
	if !info.IsDir() {
		rosterFile = filepath.Clean(a.opts.RosterPath)
		watchDir = filepath.Dir(rosterFile)
	}

	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchDir, err)
	}
	logger.Info("watching roster", "path", a.opts.RosterPath, "debounce", a.opts.Debounce)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantRosterEvent(event, rosterFile) {
				continue
			}
			logger.Debug("roster change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(a.opts.Debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(a.opts.Debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("roster watcher: %w", err)

		case <-timerC:
			timer = nil
			timerC = nil
			if _, err := a.Sweep(ctx, journal.TriggerRoster); err != nil {
				logger.Error("roster-triggered sweep failed", "error", err)
			}
		}
	}
}

// relevantRosterEvent filters watcher noise down to roster content
// changes: when watching a single roster file only that file's events
// count, and when watching a roster directory only roster extensions do.
func relevantRosterEvent(event fsnotify.Event, rosterFile string) bool {
	const ops = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	if event.Op&ops == 0 {
		return false
	}
	if rosterFile != "" {
		return filepath.Clean(event.Name) == rosterFile
	}
	switch filepath.Ext(event.Name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
