package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sitelens/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcherConfig() *common.FetcherConfig {
	return &common.FetcherConfig{
		TimeoutSeconds: 5,
		UserAgent:      common.DefaultUserAgent,
		MaxBodyMB:      10,
	}
}

func TestFetch(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(testFetcherConfig())
	result, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", result.ContentType)
	assert.Equal(t, "<html><body>ok</body></html>", string(result.Body))
	assert.Equal(t, common.DefaultUserAgent, gotUserAgent)
}

func TestFetchFollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("landed"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fetcher := NewHTTPFetcher(testFetcherConfig())
	result, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "landed", string(result.Body))
	assert.Equal(t, server.URL+"/final", result.FinalURL)
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	cfg := testFetcherConfig()
	cfg.TimeoutSeconds = 1
	fetcher := NewHTTPFetcher(cfg)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, 504, common.HTTPStatus(err))
}

func TestFetchConnectionRefused(t *testing.T) {
	// Grab a port with no listener behind it
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	fetcher := NewHTTPFetcher(testFetcherConfig())
	_, err := fetcher.Fetch(context.Background(), url)
	require.Error(t, err)
	assert.Equal(t, 502, common.HTTPStatus(err))
}

func TestFetchBodyCap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := make([]byte, 1<<20)
		for i := 0; i < 3; i++ {
			w.Write(chunk)
		}
	}))
	defer server.Close()

	cfg := testFetcherConfig()
	cfg.MaxBodyMB = 1
	fetcher := NewHTTPFetcher(cfg)

	result, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, 1<<20, len(result.Body))
}

func TestFetchCallerCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewHTTPFetcher(testFetcherConfig())
	_, err := fetcher.Fetch(ctx, server.URL)
	require.Error(t, err)
}
