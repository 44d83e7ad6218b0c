package commands

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"github.com/technomancy/scpaste/internal/config"
	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/history"
	"github.com/technomancy/scpaste/internal/index"
	"github.com/technomancy/scpaste/internal/publish"
	"github.com/technomancy/scpaste/internal/transport"
)

func parseArgs(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	cli := &CLI{}
	app, err := kong.New(cli, kong.Name("scpaste"), kong.Vars{"version": "test"})
	require.NoError(t, err)
	kctx, err := app.Parse(args)
	require.NoError(t, err)
	return cli, kctx
}

func TestGrammar(t *testing.T) {
	tests := []struct {
		args    []string
		command string
	}{
		{[]string{"paste", "main.go"}, "paste <file>"},
		{[]string{"paste"}, "paste"},
		{[]string{"index"}, "index"},
		{[]string{"init", "--force"}, "init"},
		{[]string{"history", "-n", "5"}, "history"},
		{[]string{"watch", "a.go", "b.go"}, "watch <files>"},
		{[]string{"check"}, "check"},
	}
	for _, tt := range tests {
		_, kctx := parseArgs(t, tt.args...)
		require.Equal(t, tt.command, kctx.Command())
	}
}

func TestGrammarFlags(t *testing.T) {
	cli, _ := parseArgs(t, "-c", "other.yaml", "-v", "paste", "x.py", "--title", "demo", "--language", "python", "--no-index")
	require.Equal(t, "other.yaml", cli.Config)
	require.True(t, cli.Verbose)
	require.Equal(t, "x.py", cli.Paste.File)
	require.Equal(t, "demo", cli.Paste.Title)
	require.Equal(t, "python", cli.Paste.Language)
	require.True(t, cli.Paste.NoIndex)
}

func TestInitCmd(t *testing.T) {
	root := &CLI{Config: filepath.Join(t.TempDir(), "scpaste.yaml")}

	require.NoError(t, (&InitCmd{}).Run(&Global{}, root))

	cfg, err := config.Load(root.Config)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	err = (&InitCmd{}).Run(&Global{}, root)
	require.Error(t, err)

	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, root))
}

func writeTestConfig(t *testing.T, extra string) *CLI {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scpaste.yaml")
	content := fmt.Sprintf(`http_root: https://p.example.org
scp:
  user: phil
  host: p.example.org
  path: /var/www/p
author:
  name: Phil Hagelberg
%s`, extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return &CLI{Config: path}
}

func TestHistoryCmd(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	root := writeTestConfig(t, "history_db: "+dbPath+"\n")

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Record(context.Background(), history.Entry{
			Name:     fmt.Sprintf("demo-%d", i),
			URL:      fmt.Sprintf("https://p.example.org/demo-%d.html", i),
			RawURL:   fmt.Sprintf("https://p.example.org/demo-%d", i),
			Language: "Go",
			Bytes:    12,
			Host:     "p.example.org",
			PostedAt: time.Now(),
		}))
	}
	require.NoError(t, store.Close())

	require.NoError(t, (&HistoryCmd{Limit: 2}).Run(&Global{}, root))
	require.NoError(t, (&HistoryCmd{Name: "demo-1"}).Run(&Global{}, root))
}

func TestCheckCmd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/index.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/ok.html">ok</a><a href="/gone.html">gone</a></body></html>`)
	})
	mux.HandleFunc("/ok.html", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	root := writeTestConfig(t, "")

	err := (&CheckCmd{URL: srv.URL + "/index.html"}).Run(&Global{}, root)
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryNetwork))

	mux.HandleFunc("/gone.html", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, (&CheckCmd{URL: srv.URL + "/index.html"}).Run(&Global{}, root))
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snippet.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o600))

	data, filename, err := (&PasteCmd{File: path}).readSource()
	require.NoError(t, err)
	require.Equal(t, []byte("package main\n"), data)
	require.Equal(t, path, filename)

	_, _, err = (&PasteCmd{File: filepath.Join(t.TempDir(), "absent.go")}).readSource()
	require.Error(t, err)
}

func TestApplyIndexTemplate(t *testing.T) {
	cfg := &config.Config{
		HTTPRoot:  "https://p.example.org",
		SCP:       config.SCPConfig{User: "phil", Host: "p.example.org", Path: "/var/www/p"},
		Author:    config.AuthorConfig{Name: "Phil Hagelberg"},
		IndexName: "index",
	}
	mock := transport.NewMockTransport()
	builder := index.NewBuilder(cfg, mock, publish.NewPublisher(mock, t.TempDir()))

	dir := t.TempDir()
	configPath := filepath.Join(dir, "scpaste.yaml")

	// No override anywhere keeps the embedded template.
	require.NoError(t, applyIndexTemplate(builder, configPath, ""))

	// A template next to the config file is picked up.
	neighbor := filepath.Join(dir, "index.html.tmpl")
	require.NoError(t, os.WriteFile(neighbor, []byte("<html><body>custom listing</body></html>\n"), 0o600))
	require.NoError(t, applyIndexTemplate(builder, configPath, ""))

	_, err := builder.Refresh(context.Background())
	require.NoError(t, err)
	published, ok := mock.File("index.html")
	require.True(t, ok)
	require.Contains(t, string(published), "custom listing")

	// An explicit path that does not exist is a config error.
	err = applyIndexTemplate(builder, configPath, filepath.Join(dir, "missing.tmpl"))
	require.Error(t, err)
	require.True(t, apperrors.IsCategory(err, apperrors.CategoryConfig))
}
