package settings

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/dropnote/internal/checksum"
)

const watchDebounce = 200 * time.Millisecond

// Watch observes the settings file for changes made outside the process and
// calls onChange (debounced) when its content actually changed. It watches
// the parent directory so atomic replace-by-rename is seen. Blocks until ctx
// is cancelled.
func Watch(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}
	name := filepath.Base(path)
	logger.Info("settings watcher: started", slog.String("path", path))

	last, _ := checksum.File(path)

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(watchDebounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(watchDebounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("settings watcher: stopped")
			return nil

		case <-fire:
			sum, err := checksum.File(path)
			if err != nil {
				// Removed or mid-replace; the next event re-checks.
				continue
			}
			if sum == last {
				continue
			}
			last = sum
			logger.Debug("settings watcher: change detected", slog.String("path", path))
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("settings watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
