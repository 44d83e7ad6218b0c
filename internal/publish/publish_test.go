package publish

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/technomancy/scpaste/internal/config"
	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/highlight"
	"github.com/technomancy/scpaste/internal/history"
	"github.com/technomancy/scpaste/internal/naming"
	"github.com/technomancy/scpaste/internal/transport"
)

func testConfig() *config.Config {
	return &config.Config{
		HTTPRoot: "https://p.example.org",
		SCP:      config.SCPConfig{User: "phil", Host: "p.example.org", Path: "/var/www/p"},
		Author:   config.AuthorConfig{Name: "Phil Hagelberg", Link: "https://technomancy.us"},
		Highlight: config.HighlightConfig{
			Style: "emacs",
		},
	}
}

func testService(t *testing.T, mock *transport.MockTransport) *Service {
	t.Helper()
	cfg := testConfig()
	publisher := NewPublisher(mock, t.TempDir())
	return NewService(cfg, highlight.New(cfg.Highlight), publisher)
}

func mustResolveTarget(t *testing.T, name string) naming.Target {
	t.Helper()
	n, err := naming.Resolve(name, "")
	require.NoError(t, err)
	return naming.NewTarget("https://p.example.org", n)
}

func TestPublishCopiesRenderedThenRaw(t *testing.T) {
	mock := transport.NewMockTransport()
	p := NewPublisher(mock, t.TempDir())

	err := p.Publish(context.Background(), mustResolveTarget(t, "demo"), "<html><body></body></html>", []byte("raw bytes"))
	require.NoError(t, err)

	names, err := mock.ListDir(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"demo.html", "demo"}, names, "rendered document must be copied before the raw source")

	raw, ok := mock.File("demo")
	require.True(t, ok)
	require.Equal(t, "raw bytes", string(raw))
}

// Publishing the same name twice leaves exactly one artifact pair.
func TestPublishOverwritesExistingPair(t *testing.T) {
	mock := transport.NewMockTransport()
	p := NewPublisher(mock, t.TempDir())
	target := mustResolveTarget(t, "demo")

	require.NoError(t, p.Publish(context.Background(), target, "<body></body>", []byte("v1")))
	require.NoError(t, p.Publish(context.Background(), target, "<body></body>", []byte("v2")))

	names, err := mock.ListDir(context.Background())
	require.NoError(t, err)
	require.Len(t, names, 2)

	raw, _ := mock.File("demo")
	require.Equal(t, "v2", string(raw))
	require.Equal(t, 4, mock.Calls().Copy)
}

func TestPublishTransferFailure(t *testing.T) {
	mock := transport.NewMockTransport()
	mock.FailCopyWith(errors.New("ssh: connect to host p.example.org port 22: Connection refused"))
	p := NewPublisher(mock, t.TempDir())

	err := p.Publish(context.Background(), mustResolveTarget(t, "demo"), "doc", []byte("raw"))
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryPublish))
	require.Contains(t, err.Error(), "Connection refused")
}

func TestServicePasteEndToEnd(t *testing.T) {
	mock := transport.NewMockTransport()
	svc := testService(t, mock)

	source := []byte("(defn greet [] (println \"hi\"))\n")
	receipt, err := svc.Paste(context.Background(), Paste{
		Title:    "demo",
		Filename: "demo.clj",
		Source:   source,
	})
	require.NoError(t, err)

	require.Equal(t, "https://p.example.org/demo.html", receipt.URL)
	require.Equal(t, "https://p.example.org/demo", receipt.RawURL)
	require.Equal(t, "demo", receipt.Name)
	require.Equal(t, int64(len(source)), receipt.Bytes)
	require.Equal(t, "p.example.org", receipt.Host)

	rendered, ok := mock.File("demo.html")
	require.True(t, ok, "rendered document not uploaded")
	doc := string(rendered)
	require.Contains(t, doc, "paste-footer")
	require.Contains(t, doc, `<a href="https://p.example.org/demo">raw</a>`)
	require.Contains(t, doc, "Phil Hagelberg")
	require.True(t, strings.HasSuffix(doc, "</body>\n</html>\n"))

	raw, ok := mock.File("demo")
	require.True(t, ok, "raw source not uploaded")
	require.Equal(t, source, raw, "raw source must be uploaded byte for byte")
}

func TestServiceTitleFallsBackToFilename(t *testing.T) {
	mock := transport.NewMockTransport()
	svc := testService(t, mock)

	receipt, err := svc.Paste(context.Background(), Paste{
		Filename: "/home/phil/src/scratch.go",
		Source:   []byte("package scratch\n"),
	})
	require.NoError(t, err)
	require.Equal(t, "scratch.go", receipt.Name)
	require.Equal(t, "https://p.example.org/scratch.go.html", receipt.URL)
}

func TestServiceRejectsUnnamedPaste(t *testing.T) {
	mock := transport.NewMockTransport()
	svc := testService(t, mock)

	_, err := svc.Paste(context.Background(), Paste{Source: []byte("anonymous")})
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryName))
	require.Equal(t, 0, mock.Calls().Copy, "nothing may be uploaded for an unnamed paste")
}

func TestServiceTransferFailureProducesNoReceipt(t *testing.T) {
	mock := transport.NewMockTransport()
	mock.FailCopyWith(errors.New("scp: permission denied"))
	svc := testService(t, mock)

	receipt, err := svc.Paste(context.Background(), Paste{Title: "demo", Source: []byte("x")})
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryPublish))
	require.Empty(t, receipt.URL)
}

func TestServiceRecordsHistory(t *testing.T) {
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	mock := transport.NewMockTransport()
	svc := testService(t, mock).WithHistory(store)

	_, err = svc.Paste(context.Background(), Paste{Title: "remembered", Source: []byte("x")})
	require.NoError(t, err)

	entries, err := store.ByName(context.Background(), "remembered")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "https://p.example.org/remembered.html", entries[0].URL)
	require.Equal(t, "p.example.org", entries[0].Host)
}

func TestServiceMarkdownPaste(t *testing.T) {
	mock := transport.NewMockTransport()
	svc := testService(t, mock)

	receipt, err := svc.Paste(context.Background(), Paste{
		Title:    "notes",
		Markdown: true,
		Source:   []byte("# Notes\n\ncontent\n"),
	})
	require.NoError(t, err)
	require.Equal(t, highlight.MarkdownLanguage, receipt.Language)

	rendered, _ := mock.File("notes.html")
	require.Contains(t, string(rendered), "<h1>Notes</h1>")
}
