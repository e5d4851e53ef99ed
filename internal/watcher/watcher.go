// Package watcher reloads the configuration snapshot when the config or
// dotenv file is edited outside the UI (another process, a text editor).
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/router-for-me/ProxyConfigUI/internal/store"
)

// debounceDelay coalesces editor write bursts into a single reload.
const debounceDelay = 200 * time.Millisecond

// Watcher observes the directories holding the config and env files.
type Watcher struct {
	store    *store.Store
	watched  map[string]bool
	notifier *fsnotify.Watcher
}

// New creates a watcher for the store's config and env files. The
// parent directories are watched (not the files themselves) so
// rename-based atomic writes keep being observed.
func New(st *store.Store) (*Watcher, error) {
	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	w := &Watcher{
		store: st,
		watched: map[string]bool{
			filepath.Clean(st.ConfigPath()): true,
			filepath.Clean(st.EnvPath()):    true,
		},
		notifier: notifier,
	}

	dirs := map[string]bool{}
	for path := range w.watched {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if errAdd := notifier.Add(dir); errAdd != nil {
			_ = notifier.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, errAdd)
		}
	}
	return w, nil
}

// Run processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.notifier.Close() }()

	var debounce *time.Timer
	var reloadCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.notifier.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			log.WithFields(log.Fields{"file": event.Name, "op": event.Op.String()}).Debug("config file change observed")
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
				reloadCh = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(debounceDelay)
			}
		case <-reloadCh:
			debounce = nil
			reloadCh = nil
			if err := w.store.Reload(); err != nil {
				log.WithError(err).Warn("config reload after file change failed")
			} else {
				log.Info("configuration reloaded after external change")
			}
		case errWatch, ok := <-w.notifier.Errors:
			if !ok {
				return nil
			}
			log.WithError(errWatch).Warn("file watcher error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	return w.watched[filepath.Clean(event.Name)]
}
