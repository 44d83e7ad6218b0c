package staging

import (
	"os"
	"strings"
	"testing"
)

func TestSessionLifecycle(t *testing.T) {
	base := t.TempDir()

	s, err := New(base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.HasPrefix(s.Dir(), base) {
		t.Errorf("session dir %q not under base %q", s.Dir(), base)
	}

	path, err := s.WriteFile("rendered.html", []byte("<html></html>"))
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read staged file: %v", err)
	}
	if string(data) != "<html></html>" {
		t.Errorf("staged content: got %q", data)
	}

	dir := s.Dir()
	if err := s.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("staging dir still present after cleanup: %v", err)
	}
	if err := s.Cleanup(); err != nil {
		t.Errorf("second cleanup must be a no-op, got %v", err)
	}
}

func TestSessionsDoNotCollide(t *testing.T) {
	base := t.TempDir()

	a, err := New(base)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(base)
	if err != nil {
		t.Fatal(err)
	}

	if a.Dir() == b.Dir() {
		t.Errorf("two sessions share directory %q", a.Dir())
	}
}

func TestEmptyBaseUsesSystemTemp(t *testing.T) {
	s, err := New("")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := s.Cleanup(); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}()

	if !strings.HasPrefix(s.Dir(), os.TempDir()) {
		t.Errorf("expected session under %q, got %q", os.TempDir(), s.Dir())
	}
}
