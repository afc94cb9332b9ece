// package services defines interface Fetcher for retrieving web pages over HTTP
package services

import (
	"context"
	"net/http"
	"time"
)

// Fetcher retrieves a web page by absolute URL.
type Fetcher interface {
	// Fetch performs a GET request and returns the page body.
	// Transport failures and HTTP error statuses are reported as [shared.ErrFetch].
	Fetch(ctx context.Context, url string) (*Page, error)
}

// Page is a fetched document.
type Page struct {
	URL         string // Final URL after redirects
	StatusCode  int
	ContentType string
	Body        []byte
	FetchedAt   time.Time
	Elapsed     time.Duration
}

// Options configures a [PageService].
type Options struct {
	Timeout           time.Duration // Zero disables the client timeout
	UserAgent         string
	RequestsPerSecond float64 // Zero or less disables rate limiting
	Burst             int
	MaxBodyBytes      int64 // Defaults to DefaultMaxBodyBytes
	Client            *http.Client
}

// DefaultMaxBodyBytes caps how much of a page is read.
const DefaultMaxBodyBytes int64 = 10 << 20
