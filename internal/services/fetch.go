package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/wordcount/internal/shared"
)

// PageService implements [Fetcher] with a shared [http.Client] and an outbound rate limiter.
type PageService struct {
	httpClient   *http.Client
	limiter      *rate.Limiter
	userAgent    string
	maxBodyBytes int64
}

// NewPageService creates a [PageService] from opts.
//
// When opts.Client is nil a new client with opts.Timeout is used.
func NewPageService(opts Options) *PageService {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &PageService{
		httpClient:   client,
		limiter:      rate.NewLimiter(limit, burst),
		userAgent:    opts.UserAgent,
		maxBodyBytes: maxBody,
	}
}

// NewPageServiceFromConfig builds a [PageService] from the [fetch] config section.
func NewPageServiceFromConfig(cfg shared.FetchConfig) *PageService {
	return NewPageService(Options{
		Timeout:           cfg.Timeout,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
}

// Fetch performs a GET request to url and returns the response body.
func (s *PageService) Fetch(ctx context.Context, url string) (*Page, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrFetch, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrFetch, err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrFetch, err)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Page{
		URL:         finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   start,
		Elapsed:     time.Since(start),
	}, nil
}
