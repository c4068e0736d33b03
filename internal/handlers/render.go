package handlers

import (
	"net/http"
	"strings"

	"sitelens/internal/common"
	"sitelens/internal/services"

	"github.com/ternarybob/arbor"
)

// RenderHandlers serves embeddable page renderings through the proxy
type RenderHandlers struct {
	proxy  *services.Proxy
	logger arbor.ILogger
	wsHub  *WebSocketHub
}

// NewRenderHandlers creates a new render handlers instance
func NewRenderHandlers(proxy *services.Proxy, logger arbor.ILogger, wsHub *WebSocketHub) *RenderHandlers {
	return &RenderHandlers{
		proxy:  proxy,
		logger: logger,
		wsHub:  wsHub,
	}
}

// ProxyHandler serves a live page through the rendering proxy. The proxy
// always produces renderable content, so the response body is written
// as-is: a rewritten document, a passthrough resource, or an HTML error
// document.
func (h *RenderHandlers) ProxyHandler(w http.ResponseWriter, r *http.Request) {
	targetURL := r.URL.Query().Get("url")

	result := h.proxy.RenderLive(r.Context(), targetURL)

	if result.StatusCode < 400 {
		h.wsHub.SendEvent("render", map[string]interface{}{
			"url":  targetURL,
			"mode": "live",
		})
	}

	h.writeResult(w, result)
}

// PageHandler serves an archived corpus page as a styled document
func (h *RenderHandlers) PageHandler(w http.ResponseWriter, r *http.Request) {
	pageURL := r.URL.Query().Get("url")
	if strings.TrimSpace(pageURL) == "" {
		writeError(h.logger, w, common.NewInputError("missing_url", "Missing url parameter"))
		return
	}

	result, err := h.proxy.RenderArchived(pageURL)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	h.wsHub.SendEvent("render", map[string]interface{}{
		"url":  pageURL,
		"mode": "archived",
	})

	h.writeResult(w, result)
}

func (h *RenderHandlers) writeResult(w http.ResponseWriter, result *services.RenderResult) {
	if result.ContentType != "" {
		w.Header().Set("Content-Type", result.ContentType)
	}
	w.WriteHeader(result.StatusCode)
	if _, err := w.Write(result.Body); err != nil {
		h.logger.Warn().Err(err).Msg("Failed writing render response")
	}
}
