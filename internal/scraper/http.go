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

	"pantryscout-discovery/internal/ratelimit"
)

// HTTPScraper is the default Scraper: an http.Client fetch followed by
// goquery text extraction, throttled per host the same way the
// engine's HostLimiter paces ATS board requests.
type HTTPScraper struct {
	Client      *http.Client
	HostLimiter *ratelimit.KeyedLimiter
	UserAgent   string
}

// NewHTTPScraper builds a scraper with the given per-request timeout
// and a per-host rate of maxPerMinute requests.
func NewHTTPScraper(timeout time.Duration, maxPerMinute float64, burst int) *HTTPScraper {
	return &HTTPScraper{
		Client:      &http.Client{Timeout: timeout},
		HostLimiter: ratelimit.NewKeyedLimiter(maxPerMinute, burst),
		UserAgent:   "pantryscout-discovery/1.0 (+https://pantryscout.example/bot)",
	}
}

func (s *HTTPScraper) Scrape(ctx context.Context, target string) (string, error) {
	host, err := hostOf(target)
	if err != nil {
		return "", &Failure{URL: target, Reason: FailureHTTPError, Err: err}
	}
	if err := s.HostLimiter.Wait(ctx, host); err != nil {
		return "", &Failure{URL: target, Reason: FailureTimeout, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", &Failure{URL: target, Reason: FailureHTTPError, Err: err}
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", &Failure{URL: target, Reason: FailureTimeout, Err: err}
		}
		return "", &Failure{URL: target, Reason: FailureHTTPError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return "", &Failure{URL: target, Reason: FailureBlocked, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode >= 400 {
		return "", &Failure{URL: target, Reason: FailureHTTPError, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return "", &Failure{URL: target, Reason: FailureHTTPError, Err: err}
	}

	text, err := extractText(body)
	if err != nil {
		return "", &Failure{URL: target, Reason: FailureHTTPError, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Failure{URL: target, Reason: FailureEmpty}
	}
	return text, nil
}

func extractText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, nav, footer, noscript").Remove()
	// Text() joins text nodes with no separator, so give block-level
	// elements a trailing space to keep their words apart.
	doc.Find("p, div, br, li, tr, td, th, h1, h2, h3, h4, h5, h6, section, article, header, main, blockquote, pre, dt, dd").AppendHtml(" ")
	text := doc.Find("body").Text()
	return collapseWhitespace(text), nil
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %s: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %s has no host", rawURL)
	}
	return u.Host, nil
}

// ScrapeMultiple fetches each of urls (capped by the caller to a
// small count) and joins the successes into one document, separating
// pages with a source-URL header so the extractor can still attribute
// facts to a page. It only fails outright if every URL fails; per-page
// failures are otherwise silently dropped from the joined text.
func (s *HTTPScraper) ScrapeMultiple(ctx context.Context, urls []string) (string, error) {
	var sections []string
	var lastErr error
	for _, u := range urls {
		text, err := s.Scrape(ctx, u)
		if err != nil {
			lastErr = err
			continue
		}
		sections = append(sections, fmt.Sprintf("--- %s ---\n%s", u, text))
	}
	if len(sections) == 0 {
		if lastErr != nil {
			return "", lastErr
		}
		return "", &Failure{Reason: FailureEmpty}
	}
	return strings.Join(sections, "\n\n"), nil
}
