package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/technomancy/scpaste/internal/gitinfo"
	"github.com/technomancy/scpaste/internal/logfields"
	"github.com/technomancy/scpaste/internal/publish"
)

// PasteCmd implements the 'paste' command.
type PasteCmd struct {
	File     string `arg:"" optional:"" help:"File to publish; stdin is read when omitted"`
	Title    string `short:"t" help:"Title for the paste; defaults to the file name"`
	Language string `short:"l" help:"Language override for highlighting"`
	Open     bool   `help:"Open the published URL in the default browser"`
	NoIndex  bool   `name:"no-index" help:"Skip republishing the listing after the paste"`
}

func (p *PasteCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	source, filename, err := p.readSource()
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

	paste := publish.Paste{
		Title:    p.Title,
		Filename: filename,
		Language: p.Language,
		Source:   source,
	}
	if filename != "" {
		if info, ok := gitinfo.Describe(filepath.Dir(filename)); ok {
			paste.Origin = info.Origin()
		}
	}

	receipt, err := svc.Paste(ctx, paste)
	if err != nil {
		return err
	}

	fmt.Println(receipt.URL)

	if !p.NoIndex {
		if _, err := builder.Refresh(ctx); err != nil {
			return err
		}
	}

	if p.Open {
		openInBrowser(receipt.URL)
	}
	return nil
}

// readSource returns the paste source and the filename the fallback title
// and lexer matching run on. The filename stays empty for stdin.
func (p *PasteCmd) readSource() ([]byte, string, error) {
	if p.File == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "", nil
	}

	data, err := os.ReadFile(p.File)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", p.File, err)
	}
	return data, p.File, nil
}

// openInBrowser is best effort; the URL is already on stdout.
func openInBrowser(url string) {
	opener := "xdg-open"
	if runtime.GOOS == "darwin" {
		opener = "open"
	}
	if err := exec.Command(opener, url).Start(); err != nil { // #nosec G204 -- fixed opener binary, URL derives from our own config
		slog.Warn("Failed to open browser", logfields.URL(url), logfields.Error(err))
	}
}
