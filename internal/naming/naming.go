// Package naming resolves user-supplied titles into artifact names and
// derives the remote paths and public URLs published under them.
package naming

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/technomancy/scpaste/internal/errors"
)

// RenderedSuffix marks the rendered counterpart of a published artifact.
const RenderedSuffix = ".html"

// Name is a resolved paste name. The verbatim form is used as the remote
// filename; the escaped form is used as a URL path segment. A completely
// unnamed paste has no deterministic URL, so a Name is never empty.
type Name struct {
	value string
}

// Resolve turns a raw title into a Name, substituting fallback when the
// title is empty. Titles are trimmed and NFC-normalized so the filename and
// URL forms stay stable across Unicode input normalization forms. No further
// transformation is applied: callers must ensure the fallback itself carries
// no path-hostile characters.
func Resolve(raw, fallback string) (Name, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		v = strings.TrimSpace(fallback)
	}
	if v == "" {
		return Name{}, apperrors.InvalidName("empty after fallback substitution")
	}
	return Name{value: norm.NFC.String(v)}, nil
}

// MustResolve is Resolve for names known to be non-empty (reserved names
// from configuration). It panics on resolution failure.
func MustResolve(raw string) Name {
	n, err := Resolve(raw, "")
	if err != nil {
		panic("naming: unresolvable reserved name: " + raw)
	}
	return n
}

// String returns the verbatim filename form.
func (n Name) String() string { return n.value }

// Escaped returns the percent-encoded URL path segment form.
func (n Name) Escaped() string { return url.PathEscape(n.value) }

// IsZero reports whether the name was never resolved.
func (n Name) IsZero() bool { return n.value == "" }

// Target is the derived pair of remote filenames plus public URLs for one
// resolved name. All fields derive from the same name so the raw back-link
// embedded in a rendered document always matches the actual remote raw path.
type Target struct {
	Name         Name
	RenderedName string // remote filename of the rendered document
	RawName      string // remote filename of the raw source
	PublicURL    string // public URL of the rendered document
	RawURL       string // public URL of the raw source
}

// NewTarget derives the publish target for a name under an HTTP root.
func NewTarget(httpRoot string, name Name) Target {
	root := strings.TrimRight(httpRoot, "/")
	return Target{
		Name:         name,
		RenderedName: name.String() + RenderedSuffix,
		RawName:      name.String(),
		PublicURL:    root + "/" + name.Escaped() + RenderedSuffix,
		RawURL:       root + "/" + name.Escaped(),
	}
}
