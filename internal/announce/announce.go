// Package announce publishes a small JSON event after each successful paste
// so chat bridges and feed generators can pick new pastes up.
package announce

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/logfields"
)

// Event is the message published after a successful paste.
type Event struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	RawURL    string    `json:"raw_url"`
	Language  string    `json:"language,omitempty"`
	Bytes     int64     `json:"bytes"`
	Timestamp time.Time `json:"timestamp"`
}

// Announcer publishes paste events to a NATS subject.
type Announcer struct {
	conn    *nats.Conn
	subject string
}

// New connects to the configured NATS server.
func New(cfg config.AnnounceConfig) (*Announcer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("announce URL is not configured")
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Debug("announcer connected", logfields.URL(cfg.URL), logfields.Subject(cfg.Subject))

	return &Announcer{conn: conn, subject: cfg.Subject}, nil
}

// Announce publishes the event and flushes the connection so the message is
// on the wire before a short-lived CLI process exits.
func (a *Announcer) Announce(event Event) error {
	event.Timestamp = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := a.conn.Publish(a.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := a.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("failed to flush announcement: %w", err)
	}

	slog.Debug("announced paste", logfields.Name(event.Name), logfields.URL(event.URL))
	return nil
}

// Close closes the NATS connection.
func (a *Announcer) Close() error {
	if a.conn != nil {
		a.conn.Close()
	}
	return nil
}
