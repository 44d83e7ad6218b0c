package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func testEntry(name string) Entry {
	return Entry{
		Name:     name,
		URL:      "https://p.example.org/" + name + ".html",
		RawURL:   "https://p.example.org/" + name,
		Language: "Go",
		Bytes:    42,
		Host:     "p.example.org",
	}
}

func TestHistoryRecordAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	for _, name := range []string{"first", "second", "third"} {
		if err := store.Record(ctx, testEntry(name)); err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "third" || entries[1].Name != "second" {
		t.Errorf("expected newest first, got %s, %s", entries[0].Name, entries[1].Name)
	}
	if entries[0].URL != "https://p.example.org/third.html" {
		t.Errorf("url: got %q", entries[0].URL)
	}
	if entries[0].PostedAt.IsZero() {
		t.Error("posted_at not recorded")
	}
}

func TestHistoryByName(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	_ = store.Record(ctx, testEntry("demo"))
	_ = store.Record(ctx, testEntry("other"))
	_ = store.Record(ctx, testEntry("demo"))

	entries, err := store.ByName(ctx, "demo")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries for demo, got %d", len(entries))
	}

	entries, err = store.ByName(ctx, "missing")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestHistoryPreservesPostedAt(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	posted := time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC)
	e := testEntry("dated")
	e.PostedAt = posted

	ctx := context.Background()
	if err := store.Record(ctx, e); err != nil {
		t.Fatal(err)
	}

	entries, err := store.ByName(ctx, "dated")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].PostedAt.Equal(posted) {
		t.Errorf("posted_at: got %v, want %v", entries[0].PostedAt, posted)
	}
}

func TestHistoryCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store at %s: %v", path, err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Record(context.Background(), testEntry("persisted")); err != nil {
		t.Fatalf("record: %v", err)
	}
}
