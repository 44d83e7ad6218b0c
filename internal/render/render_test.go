package render

import (
	"strings"
	"testing"
	"time"

	apperrors "github.com/technomancy/scpaste/internal/errors"
)

func testFooter() Footer {
	return Footer{
		Timestamp:  time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC),
		AuthorName: "Alyssa P. Hacker",
		AuthorLink: "https://example.org/~alyssa",
		RawURL:     "https://p.example.org/demo",
	}
}

func TestComposeInsertsBeforeClosingTags(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html>\n<body>\n<pre>code</pre>\n</body>\n</html>\n"

	out, err := Compose(doc, testFooter())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	footerAt := strings.Index(out, "paste-footer")
	bodyAt := strings.LastIndex(out, "</body>")
	if footerAt < 0 || bodyAt < 0 || footerAt > bodyAt {
		t.Errorf("footer not inserted before closing body tag:\n%s", out)
	}
	if !strings.HasSuffix(out, "</body>\n</html>\n") {
		t.Errorf("closing tags not preserved:\n%s", out)
	}
}

// Composition only inserts; the surrounding document survives byte for byte.
func TestComposePreservesDocumentBytes(t *testing.T) {
	doc := "<html>\n<body>\n<pre>  weird   spacing\t</pre>\n</body>\n</html>"

	out, err := Compose(doc, testFooter())
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	idx := strings.LastIndex(doc, "</body>")
	prefix, suffix := doc[:idx], doc[idx:]

	if !strings.HasPrefix(out, prefix) {
		t.Error("bytes before the insertion point were modified")
	}
	if !strings.HasSuffix(out, suffix) {
		t.Error("closing tag bytes were modified")
	}
	inserted := out[len(prefix) : len(out)-len(suffix)]
	if inserted != testFooter().HTML() {
		t.Errorf("inserted block is not exactly the footer:\n%s", inserted)
	}
}

func TestComposeRejectsMalformedDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no body close", "<html><p>truncated"},
		{"body close without html close", "<html><body>x</body>"},
		{"html close before body close", "</html><body>x</body>"},
		{"empty document", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.doc, testFooter())
			if err == nil {
				t.Fatal("expected error, got none")
			}
			if !apperrors.IsCategory(err, apperrors.CategoryRender) {
				t.Errorf("category: got %v, want %v", apperrors.GetCategory(err), apperrors.CategoryRender)
			}
		})
	}
}

func TestFooterHTML(t *testing.T) {
	html := testFooter().HTML()

	for _, want := range []string{
		"Alyssa P. Hacker",
		`<a href="https://example.org/~alyssa">`,
		`<a href="https://p.example.org/demo">raw</a>`,
		"UTC",
		"Mar  9",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("footer missing %q:\n%s", want, html)
		}
	}
}

func TestFooterWithoutAuthorLink(t *testing.T) {
	f := testFooter()
	f.AuthorLink = ""

	html := f.HTML()
	if strings.Contains(html, `<a href="">`) {
		t.Error("empty author link must not produce an anchor")
	}
	if !strings.Contains(html, "Alyssa P. Hacker") {
		t.Error("author name missing")
	}
}

func TestFooterEscapesAuthor(t *testing.T) {
	f := testFooter()
	f.AuthorName = `Eve <script>`

	if strings.Contains(f.HTML(), "<script>") {
		t.Error("author name not escaped")
	}
}
