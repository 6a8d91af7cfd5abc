// Package watch re-runs a callback whenever a file is written.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between two callback runs.
const DefaultInterval = 500 * time.Millisecond

// Func receives the file's current contents.
type Func func(text string)

// Watcher watches a single file.
type Watcher struct {
	path    string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New returns a watcher for path that runs its callback at most once per
// interval. interval <= 0 uses DefaultInterval.
func New(path string, interval time.Duration, logger zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Watcher{
		path:    path,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
	}
}

// Run calls fn with the file's contents once immediately and again after
// writes, until ctx is cancelled. Writes are coalesced: the first event after a
// check schedules the next one for when the limiter next allows it, and
// events arriving before it runs are absorbed. The callback always sees the
// contents at the time it runs.
func (w *Watcher) Run(ctx context.Context, fn Func) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory so editors that replace the file are still seen.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w.limiter.Allow()
	w.fire(abs, fn)

	// nil until a check is scheduled; receiving from it blocks forever
	var scheduled <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if scheduled != nil {
				continue
			}
			scheduled = time.After(w.limiter.Reserve().Delay())
		case <-scheduled:
			scheduled = nil
			w.fire(abs, fn)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Str("path", abs).Msg("watch error")
		}
	}
}

func (w *Watcher) fire(path string, fn Func) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Mid-save the file may briefly be missing; the next event retries.
		w.logger.Warn().Err(err).Str("path", path).Msg("could not read watched file")
		return
	}
	fn(string(data))
}
