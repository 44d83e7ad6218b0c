// Package index builds and publishes the listing document for the
// destination directory.
package index

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/technomancy/scpaste/internal/config"
	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/logfields"
	"github.com/technomancy/scpaste/internal/metrics"
	"github.com/technomancy/scpaste/internal/naming"
	"github.com/technomancy/scpaste/internal/publish"
	"github.com/technomancy/scpaste/internal/render"
	"github.com/technomancy/scpaste/internal/transport"
)

//go:embed templates/index.html.tmpl
var embeddedTemplates embed.FS

// Result describes one index refresh.
type Result struct {
	URL     string
	Entries int
}

// Builder regenerates the published listing from the destination's current
// contents. The listing document is itself published as an artifact pair
// under the reserved index name.
type Builder struct {
	cfg       *config.Config
	transport transport.Transport
	publisher *publish.Publisher
	recorder  metrics.Recorder
	tmpl      *template.Template
	now       func() time.Time
}

// NewBuilder wires an index builder over the shared transport and publisher.
func NewBuilder(cfg *config.Config, tr transport.Transport, pub *publish.Publisher) *Builder {
	return &Builder{
		cfg:       cfg,
		transport: tr,
		publisher: pub,
		recorder:  metrics.NoopRecorder{},
		tmpl:      mustEmbeddedTemplate(),
		now:       time.Now,
	}
}

// WithRecorder routes refresh metrics to r.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithTemplateFile replaces the embedded listing template with a file
// override.
func (b *Builder) WithTemplateFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return apperrors.ConfigInvalid("index_template", err.Error())
	}
	tmpl, err := template.New("index").Parse(string(raw))
	if err != nil {
		return apperrors.ConfigInvalid("index_template", err.Error())
	}
	b.tmpl = tmpl
	return nil
}

// Refresh lists the destination, renders the listing document, and
// publishes it under the reserved index name.
func (b *Builder) Refresh(ctx context.Context) (Result, error) {
	names, err := b.transport.ListDir(ctx)
	if err != nil {
		b.recorder.IncIndexRefresh(metrics.ResultFailure)
		return Result{}, apperrors.ListFailed(b.cfg.SCP.Host, err)
	}

	entries := Filter(names, b.cfg.IndexName, b.cfg.PrivacyMarker)

	doc, err := b.renderListing(entries)
	if err != nil {
		b.recorder.IncIndexRefresh(metrics.ResultFailure)
		return Result{}, err
	}

	target := naming.NewTarget(b.cfg.HTTPRoot, naming.MustResolve(b.cfg.IndexName))
	composed, err := render.Compose(doc, render.Footer{
		Timestamp:  b.now(),
		AuthorName: b.cfg.Author.Name,
		AuthorLink: b.cfg.Author.Link,
		RawURL:     target.RawURL,
	})
	if err != nil {
		b.recorder.IncIndexRefresh(metrics.ResultFailure)
		return Result{}, err
	}

	if err := b.publisher.Publish(ctx, target, composed, []byte(doc)); err != nil {
		b.recorder.IncIndexRefresh(metrics.ResultFailure)
		return Result{}, err
	}

	b.recorder.IncIndexRefresh(metrics.ResultSuccess)
	b.recorder.SetIndexEntries(len(entries))
	slog.Info("index refreshed", logfields.URL(target.PublicURL), logfields.Entries(len(entries)))

	return Result{URL: target.PublicURL, Entries: len(entries)}, nil
}

// Filter keeps the filenames fit for the public listing: rendered documents
// only, minus those carrying the privacy marker, minus the listing document
// itself. The order the transport reported is preserved.
func Filter(names []string, indexName, privacyMarker string) []string {
	reserved := indexName + naming.RenderedSuffix
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.HasSuffix(name, naming.RenderedSuffix) {
			continue
		}
		if privacyMarker != "" && strings.Contains(name, privacyMarker) {
			continue
		}
		if indexName != "" && name == reserved {
			continue
		}
		kept = append(kept, name)
	}
	return kept
}

type listingEntry struct {
	Name string
	HREF string
}

type listingData struct {
	Title    string
	Preamble string
	Entries  []listingEntry
}

func (b *Builder) renderListing(names []string) (string, error) {
	root := strings.TrimRight(b.cfg.HTTPRoot, "/")
	entries := make([]listingEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, listingEntry{
			Name: name,
			HREF: root + "/" + name,
		})
	}

	data := listingData{
		Title:    "Pastes on " + b.cfg.SCP.Host,
		Preamble: fmt.Sprintf("%d pastes published. Drop the .html suffix from any link for the raw source.", len(entries)),
		Entries:  entries,
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", apperrors.RenderFailed(err)
	}
	return buf.String(), nil
}

func mustEmbeddedTemplate() *template.Template {
	raw, err := embeddedTemplates.ReadFile("templates/index.html.tmpl")
	if err != nil {
		panic(fmt.Sprintf("embedded index template missing: %v", err))
	}
	return template.Must(template.New("index").Parse(string(raw)))
}
