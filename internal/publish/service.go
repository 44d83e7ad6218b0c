package publish

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/technomancy/scpaste/internal/announce"
	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/highlight"
	"github.com/technomancy/scpaste/internal/history"
	"github.com/technomancy/scpaste/internal/logfields"
	"github.com/technomancy/scpaste/internal/metrics"
	"github.com/technomancy/scpaste/internal/naming"
	"github.com/technomancy/scpaste/internal/render"
)

// Paste is one publish request as the user hands it over.
type Paste struct {
	Title    string // explicit title; empty falls back to the filename
	Filename string // original filename, used for the fallback title and lexer matching
	Language string // explicit lexer override
	Markdown bool   // render as Markdown instead of highlighting
	Origin   string // optional provenance note stamped into the footer
	Source   []byte
}

// Service runs the full paste pipeline: resolve the name, render, stamp the
// footer, and publish. History, metrics, and announcements hook in around
// the pipeline without being able to fail it.
type Service struct {
	cfg       *config.Config
	renderer  *highlight.Renderer
	publisher *Publisher
	recorder  metrics.Recorder
	history   *history.Store
	announcer *announce.Announcer
	now       func() time.Time
}

// NewService wires the paste pipeline.
func NewService(cfg *config.Config, renderer *highlight.Renderer, publisher *Publisher) *Service {
	return &Service{
		cfg:       cfg,
		renderer:  renderer,
		publisher: publisher,
		recorder:  metrics.NoopRecorder{},
		now:       time.Now,
	}
}

// WithRecorder routes operation metrics to r.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithHistory records successful publishes in h.
func (s *Service) WithHistory(h *history.Store) *Service {
	s.history = h
	return s
}

// WithAnnouncer publishes an event for each successful paste.
func (s *Service) WithAnnouncer(a *announce.Announcer) *Service {
	s.announcer = a
	return s
}

// Paste publishes one paste and returns its receipt.
func (s *Service) Paste(ctx context.Context, p Paste) (Receipt, error) {
	start := s.now()

	name, err := naming.Resolve(p.Title, fallbackTitle(p.Filename))
	if err != nil {
		s.recorder.IncPublishResult(metrics.ResultFailure)
		return Receipt{}, err
	}
	target := naming.NewTarget(s.cfg.HTTPRoot, name)

	renderStart := s.now()
	res, err := s.renderer.Render(highlight.Request{
		Title:    name.String(),
		Filename: p.Filename,
		Language: p.Language,
		Markdown: p.Markdown,
		Source:   p.Source,
	})
	if err != nil {
		s.recorder.IncPublishResult(metrics.ResultFailure)
		return Receipt{}, err
	}
	s.recorder.ObserveRenderDuration(res.Language, s.now().Sub(renderStart))

	doc, err := render.Compose(res.Document, render.Footer{
		Timestamp:  start,
		AuthorName: s.cfg.Author.Name,
		AuthorLink: s.cfg.Author.Link,
		RawURL:     target.RawURL,
		Origin:     p.Origin,
	})
	if err != nil {
		s.recorder.IncPublishResult(metrics.ResultFailure)
		return Receipt{}, err
	}

	if err := s.publisher.Publish(ctx, target, doc, p.Source); err != nil {
		s.recorder.IncPublishResult(metrics.ResultFailure)
		return Receipt{}, err
	}

	receipt := Receipt{
		Name:     name.String(),
		URL:      target.PublicURL,
		RawURL:   target.RawURL,
		Language: res.Language,
		Bytes:    int64(len(p.Source)),
		Host:     s.cfg.SCP.Host,
		Duration: s.now().Sub(start),
	}

	s.recorder.IncPublishResult(metrics.ResultSuccess)
	s.recorder.ObservePublishDuration(receipt.Duration)
	s.recorder.ObservePasteBytes(receipt.Bytes)
	s.afterPublish(ctx, receipt, start)

	return receipt, nil
}

// afterPublish runs the optional hooks. Their failures are logged, never
// returned: the paste is already live.
func (s *Service) afterPublish(ctx context.Context, r Receipt, postedAt time.Time) {
	if s.history != nil {
		entry := history.Entry{
			Name:     r.Name,
			URL:      r.URL,
			RawURL:   r.RawURL,
			Language: r.Language,
			Bytes:    r.Bytes,
			Host:     r.Host,
			PostedAt: postedAt,
		}
		if err := s.history.Record(ctx, entry); err != nil {
			slog.Warn("history record failed", logfields.Name(r.Name), logfields.Error(err))
		}
	}

	if s.announcer != nil {
		event := announce.Event{
			Name:     r.Name,
			URL:      r.URL,
			RawURL:   r.RawURL,
			Language: r.Language,
			Bytes:    r.Bytes,
		}
		if err := s.announcer.Announce(event); err != nil {
			slog.Warn("announcement failed", logfields.Name(r.Name), logfields.Error(err))
		}
	}
}

func fallbackTitle(filename string) string {
	if filename == "" {
		return ""
	}
	return filepath.Base(filename)
}
