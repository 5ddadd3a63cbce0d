// Package watch observes the active vault directory for document changes
// made outside the application, such as sync tools or other editors.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called for each document change in the watched vault.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind, path string)

// Manager owns a single fsnotify watcher pointed at the active vault.
// Retargets go through a channel so the run loop is the only goroutine that
// touches the watcher. Vaults are flat directories; the watch is not
// recursive.
type Manager struct {
	ext     string
	logger  *slog.Logger
	cb      EventCallback
	targets chan string
}

// NewManager creates a manager for documents carrying ext. cb may be nil.
func NewManager(ext string, logger *slog.Logger, cb EventCallback) *Manager {
	return &Manager{
		ext:     ext,
		logger:  logger,
		cb:      cb,
		targets: make(chan string, 1),
	}
}

// SetVault points the manager at dir, replacing any retarget still
// pending; the latest value wins. An empty dir stops watching. SetVault
// never blocks and may be called before Run.
func (m *Manager) SetVault(dir string) {
	for {
		select {
		case m.targets <- dir:
			return
		default:
		}
		select {
		case <-m.targets:
		default:
		}
	}
}

// Run processes watcher events until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	current := ""
	retarget := func(dir string) {
		if dir == current {
			return
		}
		if current != "" {
			_ = w.Remove(current)
			current = ""
		}
		if dir == "" {
			m.logger.Info("watch: vault unset")
			return
		}
		if err := w.Add(dir); err != nil {
			m.logger.Warn("watch: add vault failed",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
			return
		}
		current = dir
		m.logger.Info("watch: watching vault", slog.String("dir", dir))
	}

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("watch: stopped")
			return nil

		case dir := <-m.targets:
			retarget(dir)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := ev.Name
			if filepath.Ext(name) != m.ext {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				if info, statErr := os.Stat(name); statErr == nil && info.IsDir() {
					continue
				}
				m.emit("created", name)
			case ev.Op&fsnotify.Write != 0:
				m.emit("updated", name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path only; the new path arrives
				// as a separate Create event.
				m.emit("deleted", name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (m *Manager) emit(kind, path string) {
	m.logger.Debug("watch: "+kind, slog.String("path", path))
	if m.cb != nil {
		m.cb(kind, path)
	}
}
