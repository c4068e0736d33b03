package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"
)

// httpFetcher retrieves upstream pages with a bounded timeout and a
// conventional browser identity. It follows redirects and never retries;
// a failed fetch is terminal for the request.
type httpFetcher struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBody   int64
}

func NewHTTPFetcher(cfg *common.FetcherConfig) interfaces.Fetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	return &httpFetcher{
		client: &http.Client{
			Transport: &http.Transport{
				MaxConnsPerHost:     10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: cfg.UserAgent,
		timeout:   timeout,
		maxBody:   int64(cfg.MaxBodyMB) << 20,
	}
}

// Fetch retrieves the resource at targetURL. The per-request deadline is
// layered onto the caller's context so caller cancellation aborts the
// in-flight fetch promptly.
func (f *httpFetcher) Fetch(ctx context.Context, targetURL string) (*interfaces.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, common.NewInputError("invalid_url", "Invalid URL").WithCause(err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, common.NewTimeoutError("fetch_timeout", "Could not load this website in time").WithCause(err)
		}
		return nil, common.NewUpstreamError("fetch_failed", "Could not load this website").WithCause(err)
	}
	defer resp.Body.Close()

	// Cap the body to guard against unbounded or infinite responses
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, common.NewTimeoutError("fetch_timeout", "Could not load this website in time").WithCause(err)
		}
		return nil, common.NewUpstreamError("fetch_read_failed", "Failed reading upstream response").WithCause(err)
	}

	finalURL := targetURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &interfaces.FetchResult{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
	}, nil
}
