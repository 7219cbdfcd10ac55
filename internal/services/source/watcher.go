package source

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/claude-quota-tui/internal/logger"
)

// Watcher signals when transcript files under the data directories change,
// so a refresh can run ahead of the next scheduled tick. Signals are
// coalesced; a slow consumer sees at most one pending signal.
type Watcher struct {
	watcher       *fsnotify.Watcher
	signalChan    chan struct{}
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// NewWatcher watches dirs and their immediate subdirectories for transcript
// writes. Directories that cannot be watched are skipped with a warning.
func NewWatcher(dirs []string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:    watcher,
		signalChan: make(chan struct{}, 1),
		stopChan:   make(chan struct{}),
	}

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch data dir", "dir", dir, "error", err)
			continue
		}
		// Transcripts live one level down, in per-project directories.
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			sub := filepath.Join(dir, entry.Name())
			if err := watcher.Add(sub); err != nil {
				logger.Warn("cannot watch project dir", "dir", sub, "error", err)
			}
		}
	}

	go w.watchLoop()
	return w, nil
}

// Changes returns the channel that receives coalesced change signals.
func (w *Watcher) Changes() <-chan struct{} {
	return w.signalChan
}

// watchLoop handles file system events with debouncing.
func (w *Watcher) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// New project directories start receiving transcripts right
			// after creation.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						logger.Warn("cannot watch new dir", "dir", event.Name, "error", err)
					}
					continue
				}
			}

			if filepath.Ext(event.Name) != ".jsonl" {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// Debounce rapid changes
				if w.debounceTimer != nil {
					w.debounceTimer.Stop()
				}
				w.debounceTimer = time.AfterFunc(debounceInterval, w.signal)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("file watcher error", "error", err)

		case <-w.stopChan:
			return
		}
	}
}

// signal notifies without blocking. A pending signal already covers this
// change.
func (w *Watcher) signal() {
	select {
	case w.signalChan <- struct{}{}:
	default:
	}
}

// Close stops the watcher and cleans up resources.
func (w *Watcher) Close() error {
	close(w.stopChan)

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	return w.watcher.Close()
}
