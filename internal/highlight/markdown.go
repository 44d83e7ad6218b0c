package highlight

import (
	"bytes"

	"github.com/yuin/goldmark"

	apperrors "github.com/technomancy/scpaste/internal/errors"
)

// renderMarkdown converts the source to HTML and wraps it in the shared
// document shell. Markdown pastes carry no highlighting stylesheet.
func (r *Renderer) renderMarkdown(req Request) (Result, error) {
	md := goldmark.New()

	var body bytes.Buffer
	if err := md.Convert(req.Source, &body); err != nil {
		return Result{}, apperrors.RenderFailed(err)
	}

	return Result{
		Document: document(req.Title, "", body.String()),
		Language: MarkdownLanguage,
	}, nil
}
