package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultUserAgent = "reviewpulse/1.0 (+https://github.com/zombar/reviewpulse)"
	maxBodyBytes     = 10 << 20
)

var (
	// ErrInvalidURL marks addresses the scraper refuses to fetch.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNoContent means the page fetched fine but held no usable text.
	ErrNoContent = errors.New("no content could be extracted")
)

// StatusError reports a non-200 response so callers can decide whether the
// failure is worth retrying.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Temporary reports whether the status suggests the page may succeed later.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusRequestTimeout ||
		e.Code == http.StatusTooManyRequests ||
		e.Code >= 500
}

// Result is the readable text pulled from one fetched page.
type Result struct {
	URL       string
	Title     string
	Content   string
	WordCount int
}

// Scraper fetches web pages and extracts their readable text. Safe for
// concurrent use.
type Scraper struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

// New creates a Scraper with the given request timeout.
func New(timeout time.Duration) *Scraper {
	return &Scraper{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		maxBody:   maxBodyBytes,
	}
}

// ValidateURL checks that rawURL is an absolute http or https address.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// Fetch downloads rawURL and extracts its title and main text.
func (s *Scraper) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, &StatusError{Code: resp.StatusCode})
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	content := extractContent(doc)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w from %s", ErrNoContent, rawURL)
	}

	return &Result{
		URL:       rawURL,
		Title:     extractTitle(doc),
		Content:   content,
		WordCount: len(strings.Fields(content)),
	}, nil
}
