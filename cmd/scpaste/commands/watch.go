package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/technomancy/scpaste/internal/logfields"
	"github.com/technomancy/scpaste/internal/metrics"
	"github.com/technomancy/scpaste/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Files       []string `arg:"" help:"Files to republish whenever they change"`
	MetricsAddr string   `name:"metrics-addr" help:"Prometheus listen address, overrides the configured one"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, builder := newPipeline(cfg)
	closeHooks := attachHooks(cfg, svc)
	defer closeHooks()
	if err := applyIndexTemplate(builder, root.Config, ""); err != nil {
		return err
	}

	watcher, err := watch.New(cfg, svc, builder, w.Files)
	if err != nil {
		return err
	}

	addr := cfg.Watch.MetricsAddr
	if w.MetricsAddr != "" {
		addr = w.MetricsAddr
	}
	if addr != "" {
		registry := prometheus.NewRegistry()
		recorder := metrics.NewPrometheusRecorder(registry)
		svc.WithRecorder(recorder)
		builder.WithRecorder(recorder)
		watcher.WithMetrics(addr, metrics.HTTPHandler(registry))
	}

	slog.Info("Watching for changes", logfields.Entries(len(w.Files)))
	return watcher.Run(ctx)
}
