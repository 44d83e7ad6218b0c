// Package publish stages finished artifact pairs locally and uploads them
// to the destination directory.
package publish

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/logfields"
	"github.com/technomancy/scpaste/internal/naming"
	"github.com/technomancy/scpaste/internal/staging"
	"github.com/technomancy/scpaste/internal/transport"
)

// Receipt describes one completed publish.
type Receipt struct {
	Name     string
	URL      string // public URL of the rendered document
	RawURL   string
	Language string
	Bytes    int64 // raw source size
	Host     string
	Duration time.Duration
}

// Publisher uploads a rendered document together with its raw source.
type Publisher struct {
	transport  transport.Transport
	stagingDir string
}

// NewPublisher builds a Publisher over a transport. stagingDir may be empty
// to stage under the system temp directory.
func NewPublisher(t transport.Transport, stagingDir string) *Publisher {
	return &Publisher{transport: t, stagingDir: stagingDir}
}

// Publish stages both artifact forms and copies them to the destination,
// the rendered document first and the raw source second. Re-publishing a
// name overwrites both remote files; nothing else at the destination is
// touched. The two transfers are not atomic, so a failed second transfer can
// leave a fresh rendered document next to a stale raw file.
func (p *Publisher) Publish(ctx context.Context, target naming.Target, rendered string, raw []byte) error {
	session, err := staging.New(p.stagingDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Cleanup(); err != nil {
			slog.Warn("staging cleanup failed", logfields.Path(session.Dir()), logfields.Error(err))
		}
	}()

	renderedPath, err := session.WriteFile("rendered.html", []byte(rendered))
	if err != nil {
		return err
	}
	rawPath, err := session.WriteFile("raw", raw)
	if err != nil {
		return err
	}

	if err := p.transport.Copy(ctx, renderedPath, target.RenderedName); err != nil {
		return apperrors.PublishFailed(target.RenderedName, err)
	}
	if err := p.transport.Copy(ctx, rawPath, target.RawName); err != nil {
		return apperrors.PublishFailed(target.RawName, err)
	}

	slog.Info("published", logfields.Name(target.Name.String()), logfields.URL(target.PublicURL))
	return nil
}
