package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pantryscout-discovery/internal/scraper"
)

func TestScrape_ExtractsBodyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><script>ignored()</script></head><body><h1>Downtown Pantry</h1><p>Open Mon-Fri</p></body></html>`))
	}))
	defer srv.Close()

	s := scraper.NewHTTPScraper(5*time.Second, 600, 10)
	text, err := s.Scrape(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Downtown Pantry Open Mon-Fri" {
		t.Fatalf("unexpected extracted text: %q", text)
	}
}

func TestScrape_BlockedOnForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	s := scraper.NewHTTPScraper(5*time.Second, 600, 10)
	_, err := s.Scrape(context.Background(), srv.URL)

	var failure *scraper.Failure
	if !errors.As(err, &failure) || failure.Reason != scraper.FailureBlocked {
		t.Fatalf("expected FailureBlocked, got %v", err)
	}
}

func TestScrape_EmptyOnBlankBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>   </body></html>`))
	}))
	defer srv.Close()

	s := scraper.NewHTTPScraper(5*time.Second, 600, 10)
	_, err := s.Scrape(context.Background(), srv.URL)

	var failure *scraper.Failure
	if !errors.As(err, &failure) || failure.Reason != scraper.FailureEmpty {
		t.Fatalf("expected FailureEmpty, got %v", err)
	}
}

func TestScrapeMultiple_JoinsWithSourceHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Hours: 9-5</body></html>`))
	}))
	defer srv.Close()

	s := scraper.NewHTTPScraper(5*time.Second, 600, 10)
	text, err := s.ScrapeMultiple(context.Background(), []string{srv.URL, srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "--- " + srv.URL; !strings.Contains(text, want) {
		t.Fatalf("expected joined text to contain source header %q, got %q", want, text)
	}
}
