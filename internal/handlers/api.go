package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"
	"sitelens/internal/models"
	"sitelens/internal/services"

	"github.com/ternarybob/arbor"
)

// APIHandlers contains all API endpoint handlers
type APIHandlers struct {
	config     *common.Config
	storage    interfaces.Storage
	analyzer   interfaces.PageAnalyzer
	aggregator *services.Aggregator
	logger     arbor.ILogger
	startTime  time.Time
	wsHub      *WebSocketHub
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Build     string    `json:"build"`
	Uptime    float64   `json:"uptime_seconds"`
	Services  struct {
		Database bool `json:"database"`
	} `json:"services"`
}

// VersionResponse represents version information
type VersionResponse struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
}

// StatusResponse represents the service status response
type StatusResponse struct {
	Server struct {
		Running bool    `json:"running"`
		Uptime  float64 `json:"uptime"`
	} `json:"server"`
	Corpora []models.CorpusInfo `json:"corpora"`
}

// ConfigResponse represents the configuration display response
type ConfigResponse struct {
	Server  *common.ServerConfig  `json:"server"`
	Storage *common.StorageConfig `json:"storage"`
	Fetcher *common.FetcherConfig `json:"fetcher"`
	Logging *common.LoggingConfig `json:"logging"`
}

// CorpusReceiptResponse acknowledges a received crawl corpus
type CorpusReceiptResponse struct {
	Success bool   `json:"success"`
	Site    string `json:"site"`
	Pages   int    `json:"pages"`
}

type analyseSiteRequest struct {
	Site string `json:"site"`
}

type analysePageRequest struct {
	URL string `json:"url"`
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(config *common.Config, storage interfaces.Storage, analyzer interfaces.PageAnalyzer, aggregator *services.Aggregator, logger arbor.ILogger, wsHub *WebSocketHub) *APIHandlers {
	return &APIHandlers{
		config:     config,
		storage:    storage,
		analyzer:   analyzer,
		aggregator: aggregator,
		logger:     logger,
		startTime:  time.Now(),
		wsHub:      wsHub,
	}
}

func writeJSON(logger arbor.ILogger, w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError maps an application error to its status and the shared
// {"error": message} envelope.
func writeError(logger arbor.ILogger, w http.ResponseWriter, err error) {
	message := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		message = appErr.UserMessage()
	}
	writeJSON(logger, w, common.HTTPStatus(err), map[string]string{"error": message})
}

func (h *APIHandlers) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(h.logger, w, status, payload)
}

func (h *APIHandlers) writeError(w http.ResponseWriter, err error) {
	writeError(h.logger, w, err)
}

// HealthHandler returns system health status
func (h *APIHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   common.GetVersion(),
		Build:     common.GetBuild(),
		Uptime:    time.Since(h.startTime).Seconds(),
	}

	health.Services.Database = h.testDatabaseConnection()
	if !health.Services.Database {
		health.Status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, health)
}

// VersionHandler returns version information
func (h *APIHandlers) VersionHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, VersionResponse{
		Version: common.GetVersion(),
		Build:   common.GetBuild(),
		Commit:  common.GetGitCommit(),
	})
}

// StatusHandler returns service status and stored corpora
func (h *APIHandlers) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := StatusResponse{
		Corpora: make([]models.CorpusInfo, 0),
	}
	status.Server.Running = true
	status.Server.Uptime = time.Since(h.startTime).Seconds()

	corpora, err := h.storage.Corpora()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to list corpora for status")
	} else {
		status.Corpora = corpora
	}

	h.writeJSON(w, http.StatusOK, status)
}

// ConfigHandler returns the active configuration
func (h *APIHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, ConfigResponse{
		Server:  &h.config.Server,
		Storage: &h.config.Storage,
		Fetcher: &h.config.Fetcher,
		Logging: &h.config.Logging,
	})
}

// AnalyseSiteHandler answers a full-site analysis request. The crawl
// corpus is tried first; when no corpus matches and the identifier is an
// absolute URL, a live single-page analysis is returned instead.
func (h *APIHandlers) AnalyseSiteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analyseSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, common.NewInputError("invalid_body", "Invalid request body").WithCause(err))
		return
	}

	corpus, err := h.storage.FindCorpus(req.Site)
	if err == nil {
		analysis := h.aggregator.Aggregate(corpus)
		h.wsHub.SendEvent("analysis", map[string]interface{}{
			"site":  analysis.URL,
			"pages": analysis.TotalPages,
		})
		h.writeJSON(w, http.StatusOK, analysis)
		return
	}

	if common.HTTPStatus(err) != http.StatusNotFound {
		h.logger.Error().Err(err).Str("site", req.Site).Msg("Corpus lookup failed")
		h.writeError(w, err)
		return
	}

	// No corpus: fall back to live analysis when the identifier is a URL
	if isAbsoluteURL(req.Site) {
		h.analyseLive(w, r, req.Site)
		return
	}

	h.writeError(w, err)
}

// AnalysePageHandler answers a live single-page analysis request
func (h *APIHandlers) AnalysePageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req analysePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, common.NewInputError("invalid_body", "Invalid request body").WithCause(err))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		h.writeError(w, common.NewInputError("missing_url", "Missing url"))
		return
	}

	h.analyseLive(w, r, req.URL)
}

func (h *APIHandlers) analyseLive(w http.ResponseWriter, r *http.Request, pageURL string) {
	analysis, err := h.analyzer.AnalyzePage(r.Context(), pageURL)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.wsHub.SendEvent("analysis", map[string]interface{}{
		"site":  pageURL,
		"pages": 1,
	})
	h.writeJSON(w, http.StatusOK, analysis)
}

// CorpusHandler receives a crawl corpus JSON document from the external
// crawl producer and stores it for aggregation and archived rendering.
func (h *APIHandlers) CorpusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var corpus models.CrawlCorpus
	if err := json.NewDecoder(r.Body).Decode(&corpus); err != nil {
		h.writeError(w, common.NewInputError("invalid_corpus", "Failed to parse crawl data").WithCause(err))
		return
	}
	if corpus.URLCrawled == "" || len(corpus.Pages) == 0 {
		h.writeError(w, common.NewInputError("empty_corpus", "Crawl data has no pages"))
		return
	}

	site := services.NormalizeSiteKey(corpus.URLCrawled)
	if err := h.storage.SaveCorpus(site, &corpus); err != nil {
		h.writeError(w, common.NewStorageError("corpus_save_failed", "Failed to store crawl data").WithCause(err))
		return
	}

	h.logger.Info().
		Str("site", site).
		Int("pages", len(corpus.Pages)).
		Msg("Crawl corpus received")

	h.wsHub.SendEvent("corpus", map[string]interface{}{
		"site":  site,
		"pages": len(corpus.Pages),
	})

	h.writeJSON(w, http.StatusOK, CorpusReceiptResponse{
		Success: true,
		Site:    site,
		Pages:   len(corpus.Pages),
	})
}

func (h *APIHandlers) testDatabaseConnection() bool {
	_, err := h.storage.Corpora()
	return err == nil
}

func isAbsoluteURL(s string) bool {
	parsed, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
