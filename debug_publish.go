package main

import (
	"context"
	"fmt"
	"log"

	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/highlight"
	"github.com/technomancy/scpaste/internal/index"
	"github.com/technomancy/scpaste/internal/publish"
	"github.com/technomancy/scpaste/internal/transport"
)

func main() {
	ctx := context.Background()

	cfg := &config.Config{
		HTTPRoot:      "https://p.example.org",
		SCP:           config.SCPConfig{User: "phil", Host: "p.example.org", Path: "/var/www/p", Port: 22},
		Author:        config.AuthorConfig{Name: "Phil Hagelberg", Link: "https://technomancy.us"},
		PrivacyMarker: "private",
		IndexName:     "index",
	}

	// Publish against the in-memory transport, no server needed.
	mock := transport.NewMockTransport()
	publisher := publish.NewPublisher(mock, "")
	svc := publish.NewService(cfg, highlight.New(cfg.Highlight), publisher)

	receipt, err := svc.Paste(ctx, publish.Paste{
		Title:    "demo",
		Language: "python",
		Source:   []byte("print(1)"),
	})
	if err != nil {
		log.Fatalf("Paste() error: %v", err)
	}
	fmt.Printf("Published: %s\n", receipt.URL)
	fmt.Printf("Raw counterpart: %s\n", receipt.RawURL)
	fmt.Printf("Detected language: %s\n", receipt.Language)

	// A marked name must never show up in the listing.
	if _, err := svc.Paste(ctx, publish.Paste{
		Title:  "scratch-private",
		Source: []byte("temporary\n"),
	}); err != nil {
		log.Fatalf("Paste() error: %v", err)
	}

	builder := index.NewBuilder(cfg, mock, publisher)
	res, err := builder.Refresh(ctx)
	if err != nil {
		log.Fatalf("Refresh() error: %v", err)
	}
	fmt.Printf("Listing at %s with %d entries\n", res.URL, res.Entries)

	calls := mock.Calls()
	fmt.Printf("Transfers: %d copies, %d listings\n", calls.Copy, calls.ListDir)
	fmt.Println("All operations completed successfully")
}
