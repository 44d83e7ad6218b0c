// Package highlight turns raw paste sources into complete standalone HTML
// documents, either syntax-highlighted code or rendered Markdown.
package highlight

import (
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/technomancy/scpaste/internal/config"
	apperrors "github.com/technomancy/scpaste/internal/errors"
)

// MarkdownLanguage is the language recorded for Markdown-rendered pastes.
const MarkdownLanguage = "markdown"

// Request describes one rendering job.
type Request struct {
	Title    string // resolved paste name, used as the document title
	Filename string // original filename for lexer matching, may be empty
	Language string // explicit language override, may be empty
	Markdown bool   // render the source as Markdown instead of highlighting it
	Source   []byte
}

// Result is a finished rendering.
type Result struct {
	Document string // complete HTML document, ends with the closing body and html tags
	Language string // resolved lexer name, or "markdown"
}

// Renderer produces standalone HTML documents from paste sources.
type Renderer struct {
	style       *chroma.Style
	lineNumbers bool
}

// New builds a Renderer from the highlight configuration. Unknown style
// names fall back to the chroma default rather than failing the paste.
func New(cfg config.HighlightConfig) *Renderer {
	return &Renderer{
		style:       styles.Get(cfg.Style),
		lineNumbers: cfg.LineNumbers,
	}
}

// Render produces a complete HTML document for the request. The document
// always closes with a body tag followed by an html tag so a footer can be
// inserted ahead of them later.
func (r *Renderer) Render(req Request) (Result, error) {
	if req.Markdown || strings.EqualFold(req.Language, MarkdownLanguage) || markdownFilename(req.Filename) {
		return r.renderMarkdown(req)
	}
	return r.renderCode(req)
}

// markdownFilename reports whether the filename names a Markdown source.
func markdownFilename(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func (r *Renderer) renderCode(req Request) (Result, error) {
	lexer := r.selectLexer(req)
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, string(req.Source))
	if err != nil {
		return Result{}, apperrors.RenderFailed(err)
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(r.lineNumbers),
	)

	var body strings.Builder
	if err := formatter.Format(&body, r.style, it); err != nil {
		return Result{}, apperrors.RenderFailed(err)
	}

	var css strings.Builder
	if err := formatter.WriteCSS(&css, r.style); err != nil {
		return Result{}, apperrors.RenderFailed(err)
	}

	return Result{
		Document: document(req.Title, css.String(), body.String()),
		Language: lexer.Config().Name,
	}, nil
}

// selectLexer picks a lexer by explicit override first, then filename,
// then content analysis, and finally falls back to plain text.
func (r *Renderer) selectLexer(req Request) chroma.Lexer {
	if req.Language != "" {
		if lexer := lexers.Get(req.Language); lexer != nil {
			return lexer
		}
	}
	if req.Filename != "" {
		if lexer := lexers.Match(req.Filename); lexer != nil {
			return lexer
		}
	}
	if lexer := lexers.Analyse(string(req.Source)); lexer != nil {
		return lexer
	}
	if lexer := lexers.Get("plaintext"); lexer != nil {
		return lexer
	}
	return lexers.Fallback
}

// document wraps a rendered body in the standalone HTML shell shared by all
// published artifacts. The closing sequence is fixed so later stages can
// rely on finding a body close followed by an html close.
func document(title, css, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\"/>\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	b.WriteString("<style>\n")
	b.WriteString(baseCSS)
	if css != "" {
		b.WriteString(css)
		if !strings.HasSuffix(css, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

const baseCSS = `body { margin: 1em auto; max-width: 60em; font-family: sans-serif; }
pre { font-family: monospace; }
.paste-footer { margin-top: 2em; border-top: 1px solid #ccc; padding-top: 0.5em; font-size: smaller; }
`
