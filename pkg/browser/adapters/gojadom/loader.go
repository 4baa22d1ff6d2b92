package gojadom

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const maxDocumentBytes = 16 << 20

// Page is a fetched document.
type Page struct {
	// URL is the final URL after redirects.
	URL  string
	HTML string
}

// Loader fetches documents. Load runs off the session worker.
type Loader interface {
	Load(ctx context.Context, rawURL string) (Page, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, rawURL string) (Page, error)

func (f LoaderFunc) Load(ctx context.Context, rawURL string) (Page, error) {
	return f(ctx, rawURL)
}

// SchemeLoader dispatches on the URL scheme.
type SchemeLoader map[string]Loader

func (s SchemeLoader) Load(ctx context.Context, rawURL string) (Page, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parse url: %w", err)
	}
	loader, ok := s[strings.ToLower(u.Scheme)]
	if !ok {
		return Page{}, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return loader.Load(ctx, rawURL)
}

// DefaultLoader handles about:, data: and http(s) URLs.
func DefaultLoader(timeout time.Duration, userAgent string) Loader {
	httpLoader := &HTTPLoader{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
	return SchemeLoader{
		"about": LoaderFunc(loadAbout),
		"data":  LoaderFunc(loadData),
		"http":  httpLoader,
		"https": httpLoader,
	}
}

func loadAbout(_ context.Context, rawURL string) (Page, error) {
	if rawURL != "about:blank" {
		return Page{}, fmt.Errorf("unknown about page %q", rawURL)
	}
	return Page{URL: rawURL, HTML: "<html><head></head><body></body></html>"}, nil
}

func loadData(_ context.Context, rawURL string) (Page, error) {
	rest, ok := strings.CutPrefix(rawURL, "data:")
	if !ok {
		return Page{}, fmt.Errorf("not a data url: %q", rawURL)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Page{}, fmt.Errorf("malformed data url")
	}
	mediaType := "text/plain"
	encoded := false
	if meta != "" {
		parts := strings.Split(meta, ";")
		if parts[0] != "" {
			mediaType = strings.ToLower(parts[0])
		}
		for _, p := range parts[1:] {
			if p == "base64" {
				encoded = true
			}
		}
	}
	var body string
	if encoded {
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return Page{}, fmt.Errorf("decode data url: %w", err)
		}
		body = string(raw)
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return Page{}, fmt.Errorf("decode data url: %w", err)
		}
		body = unescaped
	}
	return Page{URL: rawURL, HTML: asHTML(mediaType, body)}, nil
}

// HTTPLoader fetches documents with net/http.
type HTTPLoader struct {
	Client    *http.Client
	UserAgent string
}

func (l *HTTPLoader) Load(ctx context.Context, rawURL string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	if l.UserAgent != "" {
		req.Header.Set("User-Agent", l.UserAgent)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", rawURL, err)
	}
	mediaType := "text/html"
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if parsed, _, err := mime.ParseMediaType(ct); err == nil {
			mediaType = parsed
		}
	}
	return Page{URL: resp.Request.URL.String(), HTML: asHTML(mediaType, string(body))}, nil
}

func asHTML(mediaType, body string) string {
	if mediaType == "text/html" || mediaType == "application/xhtml+xml" {
		return body
	}
	return "<html><head></head><body><pre>" + html.EscapeString(body) + "</pre></body></html>"
}

// StaticPage is an in-memory document served by StaticLoader.
type StaticPage struct {
	HTML    string
	Latency time.Duration
}

// StaticLoader serves registered pages and falls back to Fallback for anything else.
type StaticLoader struct {
	mu       sync.RWMutex
	pages    map[string]StaticPage
	Fallback Loader
}

// NewStaticLoader creates a loader that falls back to about: and data: URLs.
func NewStaticLoader() *StaticLoader {
	return &StaticLoader{
		pages: make(map[string]StaticPage),
		Fallback: SchemeLoader{
			"about": LoaderFunc(loadAbout),
			"data":  LoaderFunc(loadData),
		},
	}
}

// Add registers a page served without delay.
func (l *StaticLoader) Add(rawURL, doc string) {
	l.AddWithLatency(rawURL, doc, 0)
}

// AddWithLatency registers a page served after latency.
func (l *StaticLoader) AddWithLatency(rawURL, doc string, latency time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pages[rawURL] = StaticPage{HTML: doc, Latency: latency}
}

func (l *StaticLoader) Load(ctx context.Context, rawURL string) (Page, error) {
	l.mu.RLock()
	page, ok := l.pages[rawURL]
	l.mu.RUnlock()
	if !ok {
		if l.Fallback != nil {
			return l.Fallback.Load(ctx, rawURL)
		}
		return Page{}, fmt.Errorf("no page registered for %s", rawURL)
	}
	if page.Latency > 0 {
		timer := time.NewTimer(page.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}
	return Page{URL: rawURL, HTML: page.HTML}, nil
}
