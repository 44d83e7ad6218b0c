package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "github.com/technomancy/scpaste/internal/errors"
)

// Config represents the application configuration. It is an explicit value
// passed into pipeline constructors; nothing reads it from package state.
type Config struct {
	HTTPRoot      string          `yaml:"http_root"`
	SCP           SCPConfig       `yaml:"scp"`
	Author        AuthorConfig    `yaml:"author"`
	PrivacyMarker string          `yaml:"privacy_marker"`
	IndexName     string          `yaml:"index_name"`
	StagingDir    string          `yaml:"staging_dir,omitempty"`
	Highlight     HighlightConfig `yaml:"highlight"`
	HistoryDB     string          `yaml:"history_db,omitempty"`
	Announce      AnnounceConfig  `yaml:"announce,omitempty"`
	Watch         WatchConfig     `yaml:"watch,omitempty"`
	Check         CheckConfig     `yaml:"check,omitempty"`
}

// SCPConfig identifies the remote destination for secure-copy transfers.
type SCPConfig struct {
	User string `yaml:"user"`
	Host string `yaml:"host"`
	Path string `yaml:"path"`
	Port int    `yaml:"port,omitempty"`
}

// AuthorConfig is the attribution rendered into every published footer.
type AuthorConfig struct {
	Name string `yaml:"name"`
	Link string `yaml:"link,omitempty"`
}

// HighlightConfig tunes the syntax highlighter.
type HighlightConfig struct {
	Style       string `yaml:"style,omitempty"`
	LineNumbers bool   `yaml:"line_numbers"`
}

// AnnounceConfig enables optional NATS publish announcements. Announcements
// are disabled while URL is empty.
type AnnounceConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// WatchConfig tunes watch mode. Durations are strings parsed with
// time.ParseDuration at the use site.
type WatchConfig struct {
	Debounce      string `yaml:"debounce,omitempty"`
	IndexInterval string `yaml:"index_interval,omitempty"`
	MetricsAddr   string `yaml:"metrics_addr,omitempty"`
}

// CheckConfig tunes the published-index link checker.
type CheckConfig struct {
	Timeout  string `yaml:"timeout,omitempty"`
	MaxLinks int    `yaml:"max_links,omitempty"`
}

// DefaultPath is the configuration file consulted when --config is not given.
const DefaultPath = "scpaste.yaml"

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	if err := loadEnvFiles(); err != nil {
		// Don't fail if .env doesn't exist, just note it
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, apperrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- path comes from the --config flag
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal, "failed to read config file")
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal, "failed to unmarshal config")
	}

	config.applyDefaults()

	return &config, nil
}

// applyDefaults fills in the optional fields a minimal config omits.
func (c *Config) applyDefaults() {
	c.HTTPRoot = strings.TrimRight(c.HTTPRoot, "/")
	if c.SCP.Port == 0 {
		c.SCP.Port = 22
	}
	if c.IndexName == "" {
		c.IndexName = "index"
	}
	if c.PrivacyMarker == "" {
		c.PrivacyMarker = "private"
	}
	if c.Highlight.Style == "" {
		c.Highlight.Style = "emacs"
	}
	if c.Announce.Subject == "" {
		c.Announce.Subject = "scpaste.published"
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "2s"
	}
	if c.Watch.IndexInterval == "" {
		c.Watch.IndexInterval = "15m"
	}
	if c.Check.Timeout == "" {
		c.Check.Timeout = "10s"
	}
	if c.Check.MaxLinks == 0 {
		c.Check.MaxLinks = 500
	}
}

// Validate rejects configurations that cannot produce a deterministic
// public URL or reach a remote destination.
func (c *Config) Validate() error {
	if c.HTTPRoot == "" {
		return apperrors.ConfigInvalid("http_root", "must be set")
	}
	if !strings.HasPrefix(c.HTTPRoot, "http://") && !strings.HasPrefix(c.HTTPRoot, "https://") {
		return apperrors.ConfigInvalid("http_root", "must be an http(s) URL")
	}
	if c.SCP.Host == "" {
		return apperrors.ConfigInvalid("scp.host", "must be set")
	}
	if c.SCP.Path == "" {
		return apperrors.ConfigInvalid("scp.path", "must be set")
	}
	if c.Author.Name == "" {
		return apperrors.ConfigInvalid("author.name", "must be set")
	}
	return nil
}

// HistoryPath resolves the publish-history database location, defaulting to
// the user cache directory when unconfigured.
func (c *Config) HistoryPath() (string, error) {
	if c.HistoryDB != "" {
		return c.HistoryDB, nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal, "cannot resolve user cache dir")
	}
	return filepath.Join(cacheDir, "scpaste", "history.db"), nil
}

// IndexURL returns the public URL of the published index document.
func (c *Config) IndexURL() string {
	return c.HTTPRoot + "/" + c.IndexName + ".html"
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		HTTPRoot: "https://p.example.org",
		SCP: SCPConfig{
			User: "phil",
			Host: "p.example.org",
			Path: "/var/www/p",
			Port: 22,
		},
		Author: AuthorConfig{
			Name: "Phil Hagelberg",
			Link: "https://technomancy.us",
		},
		PrivacyMarker: "private",
		IndexName:     "index",
		Highlight: HighlightConfig{
			Style:       "emacs",
			LineNumbers: true,
		},
		Announce: AnnounceConfig{
			Subject: "scpaste.published",
		},
		Watch: WatchConfig{
			Debounce:      "2s",
			IndexInterval: "15m",
		},
		Check: CheckConfig{
			Timeout:  "10s",
			MaxLinks: 500,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil { // #nosec G306 -- config holds no secrets by itself
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
