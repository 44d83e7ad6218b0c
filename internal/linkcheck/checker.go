// Package linkcheck fetches the published index and verifies that every
// document it links to is still reachable.
package linkcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/technomancy/scpaste/internal/config"
	apperrors "github.com/technomancy/scpaste/internal/errors"
	"github.com/technomancy/scpaste/internal/logfields"
)

// maxIndexBytes caps how much of the index document is read. A paste index
// beyond this size is almost certainly not ours.
const maxIndexBytes = 2 << 20

// maxConcurrent bounds parallel link probes.
const maxConcurrent = 8

// Broken is one unreachable link.
type Broken struct {
	URL    string
	Status int // 0 when the request itself failed
	Reason string
}

// Report summarizes one verification run.
type Report struct {
	Checked int
	Broken  []Broken
}

// Checker verifies published links over HTTP.
type Checker struct {
	client   *http.Client
	maxLinks int
}

// New builds a Checker from the check configuration.
func New(cfg config.CheckConfig) *Checker {
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		timeout = 10 * time.Second
	}

	// Clone the default transport so HTTP_PROXY and friends keep working.
	transport := http.DefaultTransport.(*http.Transport).Clone()

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	return &Checker{client: client, maxLinks: cfg.MaxLinks}
}

// Check fetches indexURL and probes every link extracted from it. Broken
// links land in the report; only fetching or parsing the index itself is an
// error.
func (c *Checker) Check(ctx context.Context, indexURL string) (Report, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return Report{}, apperrors.NetworkError(indexURL, err)
	}

	links, err := c.fetchLinks(ctx, indexURL, base)
	if err != nil {
		return Report{}, err
	}

	if c.maxLinks > 0 && len(links) > c.maxLinks {
		slog.Warn("capping link verification", logfields.Entries(c.maxLinks), logfields.URL(indexURL))
		links = links[:c.maxLinks]
	}

	report := Report{Checked: len(links)}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrent)

	for _, link := range links {
		select {
		case <-ctx.Done():
			wg.Wait()
			return report, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(link string) {
			defer wg.Done()
			defer func() { <-sem }()

			if status, probeErr := c.probe(ctx, link); probeErr != nil {
				mu.Lock()
				report.Broken = append(report.Broken, Broken{URL: link, Status: status, Reason: probeErr.Error()})
				mu.Unlock()
			}
		}(link)
	}
	wg.Wait()

	sort.Slice(report.Broken, func(i, j int) bool { return report.Broken[i].URL < report.Broken[j].URL })
	return report, nil
}

func (c *Checker) fetchLinks(ctx context.Context, indexURL string, base *url.URL) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, apperrors.NetworkError(indexURL, err)
	}
	req.Header.Set("User-Agent", "scpaste-linkcheck/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.NetworkError(indexURL, err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore close errors after reading
	}()

	if resp.StatusCode >= 400 {
		return nil, apperrors.NetworkError(indexURL, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
	}

	return ExtractHrefs(io.LimitReader(resp.Body, maxIndexBytes), base)
}

// probe checks a single link with a HEAD request. Status codes behind
// authentication still prove the document exists.
func (c *Checker) probe(ctx context.Context, link string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, link, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "scpaste-linkcheck/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if isAuthStatus(resp.StatusCode) {
		return resp.StatusCode, nil
	}
	if resp.StatusCode >= 400 {
		return resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return resp.StatusCode, nil
}

// isAuthStatus returns true for status codes that indicate credentials are
// required rather than a missing document.
func isAuthStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusMethodNotAllowed:
		return true
	}
	return false
}
