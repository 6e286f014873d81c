package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchDebounce coalesces the multiple write events editors and atomic
// renames produce for a single save.
const watchDebounce = 250 * time.Millisecond

// Watch re-reads the config file whenever it changes on disk and hands
// the validated result to onReload. A file that fails to load or validate
// is logged and skipped; the previous config stays in effect.
//
// Watch blocks until ctx is done. The parent directory is watched rather
// than the file itself so atomic replace (write + rename) is picked up.
func (c *AppConfig) Watch(ctx context.Context, logger zerolog.Logger, onReload func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(c.configPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	logger.Debug().Str("path", c.configPath).Msg("watching config file")

	var debounce *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(c.configPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case <-pending:
			if err := c.Reload(); err != nil {
				logger.Error().Err(err).Msg("config reload failed, keeping previous config")
				continue
			}
			logger.Info().Str("path", c.configPath).Msg("config reloaded")
			if onReload != nil {
				onReload(c.Current())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("config watcher error")
		}
	}
}
