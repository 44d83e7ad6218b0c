package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/history"
	"github.com/technomancy/scpaste/internal/logfields"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Name  string `help:"Show only pastes published under this name"`
	Limit int    `short:"n" default:"20" help:"Maximum number of entries to show"`
}

// Run lists recorded publishes. Listing needs no remote destination, so the
// configuration is loaded without validating one.
func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	path, err := cfg.HistoryPath()
	if err != nil {
		return err
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}()

	ctx := context.Background()
	var entries []history.Entry
	if h.Name != "" {
		entries, err = store.ByName(ctx, h.Name)
	} else {
		entries, err = store.Recent(ctx, h.Limit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No pastes recorded yet")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-10s  %s\n", e.PostedAt.Format("2006-01-02 15:04"), e.Language, e.URL)
	}
	return nil
}
