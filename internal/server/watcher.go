package server

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceTime = 100 * time.Millisecond

// startWatcher installs filesystem monitoring for the Git directory. A
// change directly in it (HEAD, the index) or directly in refs/heads,
// refs/tags, refs/remotes or objects/pack triggers a debounced rescan
// rather than a poll-interval wait. The watches are not recursive: nested
// ref directories and loose objects are left to the poll loop.
func (s *Server) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(s.repo.GitDir()); err != nil {
		watcher.Close()
		return err
	}
	for _, sub := range []string{"refs/heads", "refs/tags", "refs/remotes", "objects/pack"} {
		_ = watcher.Add(filepath.Join(s.repo.GitDir(), sub))
	}

	go s.watchLoop(watcher)

	log.Println("server: watching git directory for changes")
	return nil
}

func (s *Server) watchLoop(watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounceTimer *time.Timer

	for {
		select {
		case <-s.stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if shouldIgnoreEvent(event) {
				continue
			}

			log.Printf("server: change detected: %s", filepath.Base(event.Name))

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceTime, func() {
				s.rescanSafely("watch")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("server: watcher error: %v", err)
		}
	}
}

func shouldIgnoreEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	path := event.Name

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return true
	}
	if strings.HasSuffix(base, ".lock") {
		return true
	}
	if strings.Contains(path, "/logs/") {
		return true
	}
	if base == "config" {
		return true
	}

	return false
}
