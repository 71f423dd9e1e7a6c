package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettleDelay is how long the watcher waits for a burst of filesystem
// events to finish before reporting a change
const DefaultSettleDelay = 250 * time.Millisecond

// LibraryWatcher reports additions, removals and renames below the audios root
type LibraryWatcher struct {
	root     string
	settle   time.Duration
	onChange func()
	log      *zap.Logger
}

// NewLibraryWatcher creates a watcher that calls onChange once per settled burst
func NewLibraryWatcher(root string, settle time.Duration, onChange func(), log *zap.Logger) *LibraryWatcher {
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LibraryWatcher{
		root:     root,
		settle:   settle,
		onChange: onChange,
		log:      log.Named("watcher"),
	}
}

// Run watches the root and its immediate folders until ctx is done
func (w *LibraryWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.addFolders(watcher)

	timer := time.NewTimer(w.settle)
	timer.Stop()
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			// new folders need their own watch to see files dropped into them
			if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == filepath.Clean(w.root) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						w.log.Warn("failed to watch folder", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}

			pending = true
			timer.Reset(w.settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			if pending {
				pending = false
				w.log.Debug("library changed", zap.String("root", w.root))
				if w.onChange != nil {
					w.onChange()
				}
			}
		}
	}
}

func (w *LibraryWatcher) addFolders(watcher *fsnotify.Watcher) {
	names, err := readFolderNames(w.root)
	if err != nil {
		w.log.Warn("failed to list folders to watch", zap.Error(err))
		return
	}
	for _, name := range names {
		if err := watcher.Add(filepath.Join(w.root, name)); err != nil {
			w.log.Warn("failed to watch folder", zap.String("folder", name), zap.Error(err))
		}
	}
}
