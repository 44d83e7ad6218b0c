// Package render finalizes rendered documents by stamping the attribution
// footer into them ahead of the closing tags.
package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	apperrors "github.com/technomancy/scpaste/internal/errors"
)

// Footer carries everything stamped into a published document: author,
// posting time, and a link to the raw source.
type Footer struct {
	Timestamp  time.Time
	AuthorName string
	AuthorLink string // optional; plain name when empty
	RawURL     string
	Origin     string // optional provenance note, e.g. an abbreviated commit hash
}

// HTML renders the footer block. The timestamp keeps its zone abbreviation
// so readers see the poster's local time.
func (f Footer) HTML() string {
	var b strings.Builder
	b.WriteString("<div class=\"paste-footer\">\n")
	fmt.Fprintf(&b, "Posted %s %s by %s", f.Timestamp.Format(time.ANSIC), f.Timestamp.Format("MST"), f.author())
	if f.Origin != "" {
		fmt.Fprintf(&b, " (%s)", html.EscapeString(f.Origin))
	}
	if f.RawURL != "" {
		fmt.Fprintf(&b, " | <a href=\"%s\">raw</a>", html.EscapeString(f.RawURL))
	}
	b.WriteString("\n</div>\n")
	return b.String()
}

func (f Footer) author() string {
	name := html.EscapeString(f.AuthorName)
	if f.AuthorLink == "" {
		return name
	}
	return fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(f.AuthorLink), name)
}

// Compose inserts the footer into doc immediately before the final closing
// body tag. Everything before the insertion point and the closing tags after
// it are preserved byte for byte. Documents without a closing body tag
// followed by a closing html tag cannot carry a footer and are rejected.
func Compose(doc string, f Footer) (string, error) {
	idx := strings.LastIndex(doc, "</body>")
	if idx < 0 {
		return "", apperrors.MalformedDocument("no closing body tag")
	}
	if !strings.Contains(doc[idx:], "</html>") {
		return "", apperrors.MalformedDocument("no closing html tag after body")
	}
	return doc[:idx] + f.HTML() + doc[idx:], nil
}
