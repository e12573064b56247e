package assets

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type watcher struct {
	fs     *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// Watch evicts cached assets when files under the asset root change. It
// returns once the watcher is registered; watching stops when ctx is done
// or the manager is closed.
func (m *Manager) Watch(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watch != nil {
		return fmt.Errorf("already watching %s", m.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := addRecursive(fsw, m.root); err != nil {
		fsw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{fs: fsw, cancel: cancel, done: make(chan struct{})}
	m.watch = w
	go m.watchLoop(ctx, w)

	m.log.Info("watching assets", zap.String("root", m.root))
	return nil
}

// Watching reports whether a watcher is running.
func (m *Manager) Watching() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watch != nil
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func (m *Manager) watchLoop(ctx context.Context, w *watcher) {
	defer close(w.done)
	defer w.fs.Close()

	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := addRecursive(w.fs, e.Name); err != nil {
						m.log.Warn("watch new directory", zap.Error(err))
					}
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				m.Evict(e.Name)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			m.log.Warn("watch error", zap.Error(err))

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) stopWatching() {
	m.mu.Lock()
	w := m.watch
	m.watch = nil
	m.mu.Unlock()

	if w != nil {
		w.cancel()
		<-w.done
	}
}
