package jsonfile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/tunesync/server/internal/repository/catalog"
)

const (
	songsFile     = "songs_database.json"
	playlistsFile = "playlists_database.json"
)

// Repo serves immutable catalog snapshots parsed from the two JSON
// documents in dir. A snapshot is refreshed when the files change on disk
// and, as a fallback, when it outlives ttl.
type Repo struct {
	dir string
	ttl time.Duration

	snapshot atomic.Pointer[catalog.Snapshot]

	refreshMu sync.Mutex
	watcher   *fsnotify.Watcher
	done      chan struct{}
}

func NewRepo(dir string, ttl time.Duration) (*Repo, error) {
	r := &Repo{
		dir:  dir,
		ttl:  ttl,
		done: make(chan struct{}),
	}

	if err := r.Reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create catalog watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch catalog dir: %w", err)
	}
	r.watcher = watcher
	go r.watch()

	return r, nil
}

// Snapshot returns the current snapshot, lazily refreshing it when the ttl
// has elapsed. The stale snapshot is served when a refresh fails, so a
// half-written catalog file never takes reads down.
func (r *Repo) Snapshot() *catalog.Snapshot {
	snapshot := r.snapshot.Load()
	if time.Since(snapshot.LoadedAt) < r.ttl {
		return snapshot
	}

	if err := r.Reload(); err != nil {
		slog.Warn("catalog refresh failed, serving stale snapshot", "error", err)
		return snapshot
	}

	return r.snapshot.Load()
}

func (r *Repo) Reload() error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	var songsDoc struct {
		Songs map[string]catalog.Song `json:"songs"`
		Stats struct {
			GeneratedAt string `json:"generated_at"`
		} `json:"stats"`
	}
	if err := readJSONFile(filepath.Join(r.dir, songsFile), &songsDoc); err != nil {
		return err
	}

	var playlistsDoc struct {
		Playlists map[string]catalog.Playlist `json:"playlists"`
	}
	if err := readJSONFile(filepath.Join(r.dir, playlistsFile), &playlistsDoc); err != nil {
		return err
	}

	r.snapshot.Store(&catalog.Snapshot{
		Songs:       songsDoc.Songs,
		Playlists:   playlistsDoc.Playlists,
		GeneratedAt: songsDoc.Stats.GeneratedAt,
		LoadedAt:    time.Now(),
	})

	return nil
}

func (r *Repo) Close() error {
	close(r.done)
	if r.watcher != nil {
		return r.watcher.Close()
	}
	return nil
}

func (r *Repo) watch() {
	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(event.Name)
			if name != songsFile && name != playlistsFile {
				continue
			}

			if err := r.Reload(); err != nil {
				slog.Warn("catalog reload on file change failed", "file", name, "error", err)
				continue
			}
			slog.Info("catalog reloaded", "file", name)
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("catalog watcher error", "error", err)
		case <-r.done:
			return
		}
	}
}

func readJSONFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}

	return nil
}
