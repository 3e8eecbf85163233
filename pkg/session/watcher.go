package session

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// fileWatcher monitors a single file for modifications. It watches the parent
// directory because many editors replace files via rename, which drops a
// watch placed on the file itself.
type fileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func()
	done     chan struct{}
	stopOnce sync.Once
}

func newFileWatcher(path string, onChange func()) (*fileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	fw := &fileWatcher{
		watcher:  watcher,
		path:     abs,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	go fw.eventLoop()

	log.Debug().Str("path", abs).Msg("File watcher started")
	return fw, nil
}

func (fw *fileWatcher) eventLoop() {
	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				fw.onChange()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", fw.path).Msg("File watcher error")
		}
	}
}

func (fw *fileWatcher) matches(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return abs == fw.path
}

// Stop stops the watcher. Safe to call more than once.
func (fw *fileWatcher) Stop() {
	fw.stopOnce.Do(func() {
		close(fw.done)
		if err := fw.watcher.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close file watcher")
		}
	})
}
