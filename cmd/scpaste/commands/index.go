package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	Template string `help:"Listing template file overriding the embedded one"`
}

func (i *IndexCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_, builder := newPipeline(cfg)
	if err := applyIndexTemplate(builder, root.Config, i.Template); err != nil {
		return err
	}

	res, err := builder.Refresh(ctx)
	if err != nil {
		return err
	}

	fmt.Println(res.URL)
	return nil
}
