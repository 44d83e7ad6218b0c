package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/linkcheck"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	URL string `help:"Listing URL to check, defaults to the configured one"`
}

func (c *CheckCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	indexURL := c.URL
	if indexURL == "" {
		indexURL = cfg.IndexURL()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	report, err := linkcheck.New(cfg.Check).Check(ctx, indexURL)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d links\n", report.Checked)
	if len(report.Broken) == 0 {
		return nil
	}

	for _, b := range report.Broken {
		if b.Status != 0 {
			fmt.Printf("  broken: %s (status %d)\n", b.URL, b.Status)
		} else {
			fmt.Printf("  broken: %s (%s)\n", b.URL, b.Reason)
		}
	}
	return apperrors.NetworkError(indexURL, fmt.Errorf("%d of %d links broken", len(report.Broken), report.Checked))
}
