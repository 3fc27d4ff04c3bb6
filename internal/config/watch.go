package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/billie-coop/switchyard/internal/logging"
)

// Watch reloads the config file whenever it changes on disk and hands
// the fresh config to onChange. It blocks until ctx is done; run it in
// its own goroutine. Watch errors disable watching but never kill the
// process; hot reload is a convenience, not a requirement.
func (m *Manager) Watch(ctx context.Context, onChange func(*Config)) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Log.Warn().Err(err).Msg("config watch disabled")
		return
	}
	defer w.Close()

	// Watch the directory, not the file: editors and atomic writes
	// replace the file, which would silently drop a file-level watch.
	dir := filepath.Dir(m.configPath)
	base := filepath.Base(m.configPath)
	if err := w.Add(dir); err != nil {
		logging.Log.Warn().Err(err).Msg("config watch disabled")
		return
	}

	logging.Log.Info().Str("path", m.configPath).Msg("watching config")

	// Debounce to coalesce bursty editor events.
	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(200 * time.Millisecond)
		} else {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(200 * time.Millisecond)
		}
		timerCh = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			schedule()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logging.Log.Warn().Err(err).Msg("config watch error")
		case <-timerCh:
			timerCh = nil
			if err := m.Load(); err != nil {
				logging.Log.Warn().Err(err).Msg("config reload failed, keeping previous config")
				continue
			}
			logging.Log.Info().Msg("config reloaded")
			onChange(m.Get())
		}
	}
}
