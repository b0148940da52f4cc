// internal/server/watch.go
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"docuwhat/internal/logfields"
)

const debounceDuration = 300 * time.Millisecond

// startWatcher watches cfg.WatchPaths and triggers a reload on change.
// Missing paths are skipped.
func (s *Server) startWatcher(ctx context.Context) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	watched := make(map[string]bool)
	for _, p := range s.cfg.WatchPaths {
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			watcher.Close()
			return nil, fmt.Errorf("could not stat path %s: %w", p, err)
		}
		if !info.IsDir() {
			// Watch the parent so editors that save by rename are seen.
			s.addWatch(watcher, watched, filepath.Dir(p))
			continue
		}
		if err := s.watchTree(watcher, watched, p); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch directory %s: %w", p, err)
		}
	}

	go s.watchForChanges(ctx, watcher, watched)
	return watcher, nil
}

func (s *Server) watchTree(watcher *fsnotify.Watcher, watched map[string]bool, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			s.addWatch(watcher, watched, p)
		}
		return nil
	})
}

func (s *Server) addWatch(watcher *fsnotify.Watcher, watched map[string]bool, dir string) {
	dir = filepath.Clean(dir)
	if watched[dir] {
		return
	}
	if err := watcher.Add(dir); err != nil {
		s.logger.Warn("Error adding watch", logfields.Path(dir), logfields.Error(err))
		return
	}
	s.logger.Debug("Watching directory", logfields.Path(dir))
	watched[dir] = true
}

// watchForChanges coalesces bursts of events into one reload per
// debounceDuration. watched is only touched from this goroutine after start.
func (s *Server) watchForChanges(ctx context.Context, watcher *fsnotify.Watcher, watched map[string]bool) {
	var (
		timer   *time.Timer
		pending = make(chan string, 1)
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := s.watchTree(watcher, watched, event.Name); err != nil {
						s.logger.Warn("Error watching new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			name := event.Name
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceDuration, func() {
				select {
				case pending <- name:
				default:
				}
			})

		case name := <-pending:
			s.reload(name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}
