package linkcheck

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	apperrors "github.com/technomancy/scpaste/internal/errors"
)

// ExtractHrefs parses HTML and returns the anchor targets resolved against
// base. Fragments, mailto, and other non-HTTP schemes are skipped, and each
// target is reported once no matter how often it is linked.
func ExtractHrefs(r io.Reader, base *url.URL) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, apperrors.NetworkError(base.String(), err)
	}

	seen := make(map[string]bool)
	var hrefs []string

	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); shouldCheck(href) {
				if resolved := resolve(href, base); resolved != "" && !seen[resolved] {
					seen[resolved] = true
					hrefs = append(hrefs, resolved)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return hrefs, nil
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func shouldCheck(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	for _, scheme := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(href, scheme) {
			return false
		}
	}
	return true
}

func resolve(href string, base *url.URL) string {
	rel, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(rel)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}
