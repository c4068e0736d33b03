package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"
	"sitelens/internal/models"
	"sitelens/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestHandlers(t *testing.T) (*APIHandlers, interfaces.Storage) {
	t.Helper()

	cfg := common.DefaultConfig()
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "sitelens.db")

	storage, err := services.NewStorage(&cfg.Storage)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	logger := arbor.NewLogger()
	fetcher := services.NewHTTPFetcher(&cfg.Fetcher)
	analyzer := services.NewAnalyzer(fetcher, logger)
	aggregator := services.NewAggregator(logger)
	wsHub := NewWebSocketHub(logger)

	return NewAPIHandlers(cfg, storage, analyzer, aggregator, logger, wsHub), storage
}

func seedCorpus(t *testing.T, storage interfaces.Storage) {
	t.Helper()

	longBody := strings.Repeat("word ", 150)
	corpus := &models.CrawlCorpus{
		Success:    true,
		URLCrawled: "https://example.com",
		Pages: []models.RawPage{
			{URL: "https://example.com/", Content: "# Home\n\n" + longBody},
			{URL: "https://example.com/docs/install", Content: "# Install\n\n" + longBody},
		},
	}
	require.NoError(t, storage.SaveCorpus("example_com", corpus))
}

func postJSON(handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHealthHandler(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.Services.Database)
}

func TestVersionHandler(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	h.VersionHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var version VersionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &version))
	assert.Equal(t, common.GetVersion(), version.Version)
}

func TestStatusHandler(t *testing.T) {
	h, storage := newTestHandlers(t)
	seedCorpus(t, storage)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.StatusHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Server.Running)
	require.Len(t, status.Corpora, 1)
	assert.Equal(t, "example_com", status.Corpora[0].Site)
	assert.Equal(t, 2, status.Corpora[0].PageCount)
}

func TestAnalyseSiteFromCorpus(t *testing.T) {
	h, storage := newTestHandlers(t)
	seedCorpus(t, storage)

	rec := postJSON(h.AnalyseSiteHandler, "/api/analyse-site", map[string]string{"site": "example.com"})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis models.SiteAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "https://example.com", analysis.URL)
	assert.Equal(t, 2, analysis.TotalPages)
	assert.NotEmpty(t, analysis.Sections)
}

func TestAnalyseSiteNotFound(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(h.AnalyseSiteHandler, "/api/analyse-site", map[string]string{"site": "unknown.example"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No crawl data found", body["error"])
}

func TestAnalyseSiteLiveFallback(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Live</title><meta name="description" content="d"></head><body><h1>Live</h1></body></html>`))
	}))
	defer upstream.Close()

	h, _ := newTestHandlers(t)

	// No corpus matches, but the identifier is an absolute URL
	rec := postJSON(h.AnalyseSiteHandler, "/api/analyse-site", map[string]string{"site": upstream.URL})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis models.PageAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.True(t, analysis.IsLive)
	assert.Equal(t, "Live", analysis.Title)
}

func TestAnalyseSiteMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analyse-site", nil)
	rec := httptest.NewRecorder()
	h.AnalyseSiteHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalysePage(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Page</title></head><body><h1>Page</h1></body></html>`))
	}))
	defer upstream.Close()

	h, _ := newTestHandlers(t)

	rec := postJSON(h.AnalysePageHandler, "/api/analyse", map[string]string{"url": upstream.URL})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis models.PageAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "Page", analysis.Title)
	assert.Equal(t, 1, analysis.Stats.TotalPages)
}

func TestAnalysePageMissingURL(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(h.AnalysePageHandler, "/api/analyse", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Missing url", body["error"])
}

func TestAnalysePageInvalidURL(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(h.AnalysePageHandler, "/api/analyse", map[string]string{"url": "not-a-url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorpusHandler(t *testing.T) {
	h, storage := newTestHandlers(t)

	corpus := models.CrawlCorpus{
		Success:    true,
		URLCrawled: "https://pushed.example.com",
		Pages: []models.RawPage{
			{URL: "https://pushed.example.com/", Content: "# Pushed\n\nFresh crawl content arriving over HTTP."},
		},
	}

	rec := postJSON(h.CorpusHandler, "/api/corpus", corpus)
	require.Equal(t, http.StatusOK, rec.Code)

	var receipt CorpusReceiptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.True(t, receipt.Success)
	assert.Equal(t, "pushed_example_com", receipt.Site)
	assert.Equal(t, 1, receipt.Pages)

	// Stored pages are immediately servable
	page, err := storage.FindPage("https://pushed.example.com/")
	require.NoError(t, err)
	assert.Contains(t, page.Content, "# Pushed")
}

func TestCorpusHandlerRejectsEmpty(t *testing.T) {
	h, _ := newTestHandlers(t)

	rec := postJSON(h.CorpusHandler, "/api/corpus", models.CrawlCorpus{URLCrawled: "https://x.example"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(h.CorpusHandler, "/api/corpus", models.CrawlCorpus{
		Pages: []models.RawPage{{URL: "https://x.example/", Content: "text"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorpusHandlerRejectsBadJSON(t *testing.T) {
	h, _ := newTestHandlers(t)

	req := httptest.NewRequest(http.MethodPost, "/api/corpus", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	h.CorpusHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
