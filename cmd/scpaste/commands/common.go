package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/technomancy/scpaste/internal/announce"
	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/highlight"
	"github.com/technomancy/scpaste/internal/history"
	"github.com/technomancy/scpaste/internal/index"
	"github.com/technomancy/scpaste/internal/logfields"
	"github.com/technomancy/scpaste/internal/publish"
	"github.com/technomancy/scpaste/internal/transport"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct{}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"scpaste.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Paste   PasteCmd   `cmd:"" help:"Publish a file or stdin as a highlighted paste"`
	Index   IndexCmd   `cmd:"" help:"Regenerate and publish the paste listing"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
	History HistoryCmd `cmd:"" help:"List previously published pastes"`
	Watch   WatchCmd   `cmd:"" help:"Republish files whenever they change"`
	Check   CheckCmd   `cmd:"" help:"Check the published listing for broken links"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads and validates the configuration named by the root flags.
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPipeline builds the shared publish pipeline: scp transport, highlighter,
// publisher, paste service, and index builder over the same destination.
func newPipeline(cfg *config.Config) (*publish.Service, *index.Builder) {
	tr := transport.NewSCP(cfg.SCP)
	publisher := publish.NewPublisher(tr, cfg.StagingDir)
	svc := publish.NewService(cfg, highlight.New(cfg.Highlight), publisher)
	builder := index.NewBuilder(cfg, tr, publisher)
	return svc, builder
}

// applyIndexTemplate installs the listing template override. An explicit path
// wins; otherwise a template file sitting next to the configuration file is
// picked up when present.
func applyIndexTemplate(builder *index.Builder, configPath, explicit string) error {
	path := explicit
	if path == "" {
		candidate := filepath.Join(filepath.Dir(configPath), "index.html.tmpl")
		if _, err := os.Stat(candidate); err != nil {
			return nil
		}
		path = candidate
	}
	return builder.WithTemplateFile(path)
}

// attachHooks wires the optional history store and announcer onto the
// service and returns a closer for both. Hook setup failures are logged and
// skipped; a paste must not fail because the local cache or the message
// broker is unavailable.
func attachHooks(cfg *config.Config, svc *publish.Service) func() {
	var closers []func()

	if path, err := cfg.HistoryPath(); err != nil {
		slog.Warn("History disabled", logfields.Error(err))
	} else if store, err := history.Open(path); err != nil {
		slog.Warn("History disabled", logfields.Path(path), logfields.Error(err))
	} else {
		svc.WithHistory(store)
		closers = append(closers, func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close history store", logfields.Error(err))
			}
		})
	}

	if cfg.Announce.URL != "" {
		if ann, err := announce.New(cfg.Announce); err != nil {
			slog.Warn("Announcements disabled", logfields.URL(cfg.Announce.URL), logfields.Error(err))
		} else {
			svc.WithAnnouncer(ann)
			closers = append(closers, func() {
				if err := ann.Close(); err != nil {
					slog.Warn("Failed to close announcer", logfields.Error(err))
				}
			})
		}
	}

	return func() {
		for _, closer := range closers {
			closer()
		}
	}
}
