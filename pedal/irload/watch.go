package irload

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce is how long Watch waits for a burst of file events to
// settle before calling onChange.
const DefaultDebounce = 150 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	debounce time.Duration
	log      logrus.FieldLogger
}

// WithDebounce overrides DefaultDebounce. Non-positive values call onChange
// for every event.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.debounce = d
	}
}

// WithWatchLogger sets the logger for watcher errors.
func WithWatchLogger(log logrus.FieldLogger) WatchOption {
	return func(c *watchConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Watch calls onChange whenever the file at path is written, created or
// renamed into place, until ctx is done. The parent directory is watched so
// editors that replace files atomically are seen too. Watch blocks and
// returns nil when ctx is cancelled.
func Watch(ctx context.Context, path string, onChange func(), opts ...WatchOption) error {
	cfg := watchConfig{debounce: DefaultDebounce, log: logrus.StandardLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("irload: watch %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("irload: watch %s: %w", path, err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("irload: watch %s: %w", path, err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}

			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(ev.Name) != abs {
				continue
			}

			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			if cfg.debounce <= 0 {
				onChange()
				continue
			}

			if timer == nil {
				timer = time.NewTimer(cfg.debounce)
			} else {
				timer.Reset(cfg.debounce)
			}

			fire = timer.C

		case <-fire:
			fire = nil

			onChange()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			cfg.log.WithFields(logrus.Fields{
				"function": "Watch",
				"path":     abs,
				"error":    err.Error(),
			}).Warn("Impulse response watcher error")
		}
	}
}
