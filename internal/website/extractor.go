// Package website fetches a company website and reduces it to a plain-text
// summary bounded by a character budget. Extraction failures are surfaced
// as typed errors and are non-fatal to the analysis pipeline: the caller
// proceeds without website context.
package website

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/devtrail/idea-engine/internal/config"
)

const userAgent = "idea-engine/1.0"

var hrefPattern = regexp.MustCompile(`(?i)href="([^"#]+)"`)

// FetchError reports a network or HTTP-level failure while fetching a page
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports that a fetched page yielded no extractable content
type ParseError struct {
	URL    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.URL, e.Reason)
}

// Extractor fetches and summarizes website content. It is stateless and
// safe for concurrent use.
type Extractor struct {
	httpClient *http.Client
	charBudget int
	maxPages   int
}

// NewExtractor creates an extractor bounded by the given configuration
func NewExtractor(cfg config.WebsiteConfig) *Extractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	maxPages := cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	return &Extractor{
		httpClient: &http.Client{Timeout: timeout},
		charBudget: cfg.CharBudget,
		maxPages:   maxPages,
	}
}

// Extract fetches the page at rawURL, follows a bounded number of
// same-origin links, and returns the combined main text truncated to the
// character budget. One outbound GET per page, no retries.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	start, err := url.Parse(rawURL)
	if err != nil || (start.Scheme != "http" && start.Scheme != "https") {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("not a valid http(s) URL")}
	}

	body, err := e.fetchPage(ctx, start.String())
	if err != nil {
		return "", err
	}

	var parts []string
	if text := extractText(body); text != "" {
		parts = append(parts, text)
	}

	// Multi-page mode: follow same-origin links from the landing page until
	// the page limit or the character budget is reached.
	if e.maxPages > 1 {
		visited := map[string]bool{normalizeURL(start): true}
		for _, link := range sameOriginLinks(body, start) {
			if len(visited) >= e.maxPages || totalLen(parts) >= e.charBudget {
				break
			}
			if visited[link] {
				continue
			}
			visited[link] = true

			pageBody, err := e.fetchPage(ctx, link)
			if err != nil {
				// Secondary pages are best-effort.
				continue
			}
			if text := extractText(pageBody); text != "" {
				parts = append(parts, text)
			}
		}
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n"))
	if combined == "" {
		return "", &ParseError{URL: rawURL, Reason: "no extractable content"}
	}

	if len(combined) > e.charBudget {
		combined = combined[:e.charBudget]
	}

	return combined, nil
}

// fetchPage performs a single GET and returns the body
func (e *Extractor) fetchPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}

	return string(body), nil
}

// extractText strips boilerplate elements and HTML tags, returning the
// page's visible text with collapsed whitespace
func extractText(html string) string {
	text := html
	// "header" must be removed before "head" so the prefix match cannot
	// split a <header> element.
	for _, tag := range []string{"script", "style", "noscript", "svg", "header", "nav", "footer", "head"} {
		text = removeTagAndContent(text, tag)
	}
	text = stripTags(text)
	return collapseWhitespace(text)
}

// removeTagAndContent removes a specific HTML tag and everything inside it
func removeTagAndContent(html, tag string) string {
	result := html
	openTag := "<" + tag
	closeTag := "</" + tag + ">"

	for {
		lower := strings.ToLower(result)
		startIdx := strings.Index(lower, openTag)
		if startIdx == -1 {
			break
		}

		endIdx := strings.Index(lower[startIdx:], closeTag)
		if endIdx == -1 {
			// Unclosed tag, drop the rest of the document.
			result = result[:startIdx]
			break
		}

		endIdx += startIdx + len(closeTag)
		result = result[:startIdx] + " " + result[endIdx:]
	}

	return result
}

// stripTags removes remaining HTML tags, keeping their text content
func stripTags(html string) string {
	var b strings.Builder
	inTag := false
	for _, char := range html {
		switch {
		case char == '<':
			inTag = true
			b.WriteByte(' ')
		case char == '>':
			inTag = false
		case !inTag:
			b.WriteRune(char)
		}
	}
	return b.String()
}

// collapseWhitespace reduces each run of whitespace to a single space and
// trims the result
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// sameOriginLinks returns absolute same-host links found in the page body
func sameOriginLinks(body string, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)

	for _, match := range hrefPattern.FindAllStringSubmatch(body, -1) {
		ref, err := url.Parse(strings.TrimSpace(match[1]))
		if err != nil {
			continue
		}

		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		if abs.Host != base.Host {
			continue
		}

		normalized := normalizeURL(abs)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		links = append(links, normalized)
	}

	return links
}

// normalizeURL drops the fragment so equivalent pages dedupe
func normalizeURL(u *url.URL) string {
	clone := *u
	clone.Fragment = ""
	return clone.String()
}

// totalLen sums the lengths of the collected text parts
func totalLen(parts []string) int {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	return n
}
