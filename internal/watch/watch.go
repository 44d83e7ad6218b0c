// Package watch keeps a fixed set of files published, republishing each one
// as it changes and refreshing the index on a schedule.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/gitinfo"
	"github.com/technomancy/scpaste/internal/index"
	"github.com/technomancy/scpaste/internal/logfields"
	"github.com/technomancy/scpaste/internal/publish"
)

const (
	defaultDebounce = 2 * time.Second
	defaultInterval = 15 * time.Minute
)

// Watcher republishes watched files on change. Changes are debounced per
// file so editors that write in bursts trigger one republish.
type Watcher struct {
	svc      *publish.Service
	builder  *index.Builder
	files    map[string]bool // absolute paths under watch
	debounce time.Duration
	interval time.Duration

	metricsAddr    string
	metricsHandler http.Handler

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New prepares a watcher over the given files. Every file must exist up
// front; watching is for keeping known pastes fresh, not discovering them.
func New(cfg *config.Config, svc *publish.Service, builder *index.Builder, files []string) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}

	w := &Watcher{
		svc:      svc,
		builder:  builder,
		files:    make(map[string]bool, len(files)),
		debounce: parseDuration(cfg.Watch.Debounce, defaultDebounce),
		interval: parseDuration(cfg.Watch.IndexInterval, defaultInterval),
		timers:   make(map[string]*time.Timer),
	}

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve watch path %s: %w", f, err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, fmt.Errorf("cannot watch %s: %w", f, err)
		}
		w.files[abs] = true
	}

	return w, nil
}

// WithMetrics serves handler on addr under /metrics while the watcher runs.
func (w *Watcher) WithMetrics(addr string, handler http.Handler) *Watcher {
	w.metricsAddr = addr
	w.metricsHandler = handler
	return w
}

// Run publishes every watched file once, then republishes on change and
// refreshes the index periodically until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			slog.Error("error closing file watcher", logfields.Error(err))
		}
	}()

	// Watch the containing directories: editors that save by rename would
	// silently detach a watch on the file itself.
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", d, err)
		}
	}

	for f := range w.files {
		w.republish(ctx, f)
	}
	w.refreshIndex(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(func() { w.refreshIndex(ctx) }),
		gocron.WithName("index-refresh"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule index refresh: %w", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			slog.Error("scheduler shutdown failed", logfields.Error(err))
		}
	}()

	if w.metricsAddr != "" && w.metricsHandler != nil {
		stop := w.serveMetrics()
		defer stop()
	}

	slog.Info("watching for changes", logfields.Entries(len(w.files)))

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				slog.Debug("change detected", logfields.Path(path))
				w.scheduleRepublish(ctx, path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("watch error", logfields.Error(err))
		}
	}
}

// scheduleRepublish arms (or re-arms) the debounce timer for one file.
func (w *Watcher) scheduleRepublish(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.republish(ctx, path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, timer := range w.timers {
		timer.Stop()
	}
}

func (w *Watcher) republish(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("skipping unreadable file", logfields.Path(path), logfields.Error(err))
		return
	}

	p := publish.Paste{Filename: path, Source: data}
	if info, ok := gitinfo.Describe(filepath.Dir(path)); ok {
		p.Origin = info.Origin()
	}

	receipt, err := w.svc.Paste(ctx, p)
	if err != nil {
		slog.Error("republish failed", logfields.Path(path), logfields.Error(err))
		return
	}
	slog.Info("republished", logfields.Name(receipt.Name), logfields.URL(receipt.URL))
}

func (w *Watcher) refreshIndex(ctx context.Context) {
	if _, err := w.builder.Refresh(ctx); err != nil {
		slog.Error("index refresh failed", logfields.Error(err))
	}
}

// serveMetrics starts the metrics listener and returns its shutdown func.
func (w *Watcher) serveMetrics() func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.metricsHandler)
	server := &http.Server{
		Addr:         w.metricsAddr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("serving metrics", logfields.Host(w.metricsAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", logfields.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", logfields.Error(err))
		}
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using default", slog.String("value", raw), logfields.Error(err))
		return fallback
	}
	return d
}
