package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// PageOptions parameterise the HTTP page fetcher.
type PageOptions struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
}

// Page fetches product pages over HTTP.
type Page struct {
	opts   PageOptions
	logger zerolog.Logger
	client *http.Client
}

// NewPage constructs an HTTP page fetcher.
func NewPage(opts PageOptions, logger zerolog.Logger) *Page {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Page{
		opts:   opts,
		logger: logger.With().Str("component", "page_fetcher").Logger(),
		client: &http.Client{Timeout: timeout},
	}
}

// FetchPage retrieves the raw HTML of url. Non-2xx responses surface as
// *StatusError; transport and timeout failures surface as-is.
func (p *Page) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	ua := strings.TrimSpace(p.opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if lang := strings.TrimSpace(p.opts.AcceptLanguage); lang != "" {
		req.Header.Set("Accept-Language", lang)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", url, err)
	}

	p.logger.Debug().Str("url", url).Int("bytes", len(body)).Msg("page fetched")
	return string(body), nil
}

var _ PageFetcher = (*Page)(nil)
