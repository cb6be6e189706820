package website

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/devtrail/idea-engine/internal/config"
)

func testConfig(budget, pages int) config.WebsiteConfig {
	return config.WebsiteConfig{
		CharBudget: budget,
		MaxPages:   pages,
		Timeout:    5 * time.Second,
	}
}

func TestExtractStripsBoilerplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>ignored</title></head><body>
			<nav>Home About Careers</nav>
			<script>var tracking = true;</script>
			<style>.hero { color: red }</style>
			<main><h1>Acme Analytics</h1><p>We build realtime data pipelines.</p></main>
			<footer>© 2025 Acme</footer>
		</body></html>`))
	}))
	defer srv.Close()

	e := NewExtractor(testConfig(10000, 1))
	text, err := e.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !strings.Contains(text, "Acme Analytics") {
		t.Errorf("main content missing: %q", text)
	}
	if !strings.Contains(text, "realtime data pipelines") {
		t.Errorf("paragraph text missing: %q", text)
	}
	for _, boilerplate := range []string{"tracking", "color: red", "Careers", "© 2025"} {
		if strings.Contains(text, boilerplate) {
			t.Errorf("boilerplate %q leaked into extracted text: %q", boilerplate, text)
		}
	}
}

func TestExtractTruncatesToBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<body><p>" + strings.Repeat("data platform ", 500) + "</p></body>"))
	}))
	defer srv.Close()

	e := NewExtractor(testConfig(200, 1))
	text, err := e.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(text) > 200 {
		t.Errorf("extracted text exceeds budget: %d chars", len(text))
	}
}

func TestExtractMultiPageSameOrigin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<body><p>landing page</p>
			<a href="/about">About</a>
			<a href="https://other.example.com/offsite">Offsite</a></body>`))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<body><p>about page content</p></body>`))
	})
	var offsiteHit bool
	mux.HandleFunc("/offsite", func(w http.ResponseWriter, r *http.Request) {
		offsiteHit = true
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewExtractor(testConfig(10000, 3))
	text, err := e.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !strings.Contains(text, "landing page") || !strings.Contains(text, "about page content") {
		t.Errorf("multi-page text incomplete: %q", text)
	}
	if offsiteHit {
		t.Error("extractor followed a cross-origin link")
	}
}

func TestExtractFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewExtractor(testConfig(10000, 1))
	_, err := e.Extract(context.Background(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestExtractUnreachableHost(t *testing.T) {
	e := NewExtractor(testConfig(10000, 1))
	_, err := e.Extract(context.Background(), "http://127.0.0.1:1/unreachable")

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestExtractInvalidURL(t *testing.T) {
	e := NewExtractor(testConfig(10000, 1))

	for _, bad := range []string{"not a url", "ftp://example.com", ""} {
		if _, err := e.Extract(context.Background(), bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestExtractParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<body><script>only.code()</script></body>`))
	}))
	defer srv.Close()

	e := NewExtractor(testConfig(10000, 1))
	_, err := e.Extract(context.Background(), srv.URL)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}
