package integration

import (
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/highlight"
	"github.com/technomancy/scpaste/internal/index"
	"github.com/technomancy/scpaste/internal/publish"
	"github.com/technomancy/scpaste/internal/transport"
)

var updateGolden = flag.Bool("update-golden", false, "Update golden files")

// pipeline bundles the full publish stack over an in-memory transport.
type pipeline struct {
	cfg     *config.Config
	mock    *transport.MockTransport
	service *publish.Service
	builder *index.Builder
}

// newPipeline wires service and index builder against mock, publishing under
// httpRoot.
func newPipeline(t *testing.T, mock *transport.MockTransport, httpRoot string) *pipeline {
	t.Helper()
	cfg := &config.Config{
		HTTPRoot:      strings.TrimRight(httpRoot, "/"),
		SCP:           config.SCPConfig{User: "phil", Host: "p.example.org", Path: "/var/www/p", Port: 22},
		Author:        config.AuthorConfig{Name: "Phil Hagelberg", Link: "https://technomancy.us"},
		PrivacyMarker: "private",
		IndexName:     "index",
		StagingDir:    t.TempDir(),
	}
	publisher := publish.NewPublisher(mock, cfg.StagingDir)
	return &pipeline{
		cfg:     cfg,
		mock:    mock,
		service: publish.NewService(cfg, highlight.New(cfg.Highlight), publisher),
		builder: index.NewBuilder(cfg, mock, publisher),
	}
}

// serveRemote exposes the mock transport's current files over HTTP the way
// the destination web server would.
func serveRemote(t *testing.T, mock *transport.MockTransport) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		data, ok := mock.File(name)
		if !ok {
			http.NotFound(w, r)
			return
		}
		if strings.HasSuffix(name, ".html") {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// compareGolden checks got against the named golden file, rewriting the file
// first when -update-golden is set.
func compareGolden(t *testing.T, goldenPath string, got []byte) {
	t.Helper()
	if *updateGolden {
		require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0o750))
		require.NoError(t, os.WriteFile(goldenPath, got, 0o600))
		return
	}
	want, err := os.ReadFile(goldenPath) // #nosec G304 -- fixed testdata paths
	require.NoError(t, err, "golden file missing; run with -update-golden")
	require.Equal(t, string(want), string(got))
}
