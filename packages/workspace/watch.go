package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultDebounce is how long Watch waits after the last event before
// reporting a change
const DefaultDebounce = 300 * time.Millisecond

// ErrWatchUnsupported is returned by Watch for filesystems that are not
// backed by the operating system.
var ErrWatchUnsupported = errors.New("watch requires an OS-backed workspace")

// Watch reports changes under rel until ctx is done. Bursts of events are
// collapsed into one onChange call carrying the last changed path.
// Directories created while watching are watched too.
func (w *Workspace) Watch(ctx context.Context, rel string, onChange func(path string)) error {
	if _, ok := w.fs.(*afero.OsFs); !ok {
		return ErrWatchUnsupported
	}

	full, err := w.resolve(rel)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, full); err != nil {
		return err
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := w.fs.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(watcher, event.Name); err != nil {
						w.logger.Warn("watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}

			pending = w.relative(event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(pending)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Workspace) addTree(watcher *fsnotify.Watcher, full string) error {
	return afero.Walk(w.fs, full, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", filepath.Clean(path), err)
			}
		}
		return nil
	})
}
