package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"
	"sitelens/internal/middleware"
	"sitelens/internal/services"

	"github.com/ternarybob/arbor"
)

// webServer provides the HTTP endpoints for analysis, rendering, and status
type webServer struct {
	config         *common.Config
	storage        interfaces.Storage
	server         *http.Server
	logger         arbor.ILogger
	apiHandlers    *APIHandlers
	renderHandlers *RenderHandlers
	wsHub          *WebSocketHub
	running        bool
	startTime      time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(cfg *common.Config, storage interfaces.Storage, logger arbor.ILogger) (interfaces.WebService, error) {
	mux := http.NewServeMux()

	fetcher := services.NewHTTPFetcher(&cfg.Fetcher)
	analyzer := services.NewAnalyzer(fetcher, logger)
	aggregator := services.NewAggregator(logger)
	proxy := services.NewProxy(fetcher, storage, logger)

	// Create WebSocket hub first (needed by the handlers for pipeline events)
	wsHub := NewWebSocketHub(logger)

	apiHandlers := NewAPIHandlers(cfg, storage, analyzer, aggregator, logger, wsHub)
	renderHandlers := NewRenderHandlers(proxy, logger, wsHub)

	ws := &webServer{
		config:         cfg,
		storage:        storage,
		logger:         logger,
		apiHandlers:    apiHandlers,
		renderHandlers: renderHandlers,
		wsHub:          wsHub,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: mux,
		},
	}

	// Create middleware chain
	logMiddleware := middleware.Logging(logger)
	corsMiddleware := middleware.CORS
	chain := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.RequestID(logMiddleware(corsMiddleware(h)))
	}

	// Register operational endpoints with middleware
	mux.HandleFunc("/health", chain(apiHandlers.HealthHandler))
	mux.HandleFunc("/version", chain(apiHandlers.VersionHandler))
	mux.HandleFunc("/status", chain(apiHandlers.StatusHandler))
	mux.HandleFunc("/config", chain(apiHandlers.ConfigHandler))

	// Register analysis endpoints
	mux.HandleFunc("/api/analyse-site", chain(apiHandlers.AnalyseSiteHandler))
	mux.HandleFunc("/api/analyse", chain(apiHandlers.AnalysePageHandler))
	mux.HandleFunc("/api/corpus", chain(apiHandlers.CorpusHandler))

	// Register rendering endpoints
	mux.HandleFunc("/api/proxy", chain(renderHandlers.ProxyHandler))
	mux.HandleFunc("/api/page", chain(renderHandlers.PageHandler))

	// Register WebSocket endpoint
	mux.HandleFunc("/ws", corsMiddleware(wsHub.WebSocketHandler))

	return ws, nil
}

// Start starts the web server
func (ws *webServer) Start(ctx context.Context) error {
	ws.running = true
	ws.startTime = time.Now()

	go func() {
		ws.logger.Info().Int("port", ws.config.Server.Port).Msg("Starting web server")
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			ws.logger.Error().Err(err).Msg("Web server error")
		}
	}()
	return nil
}

// Stop stops the web server
func (ws *webServer) Stop() error {
	ws.running = false

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ws.logger.Info().Msg("Shutting down web server")
	return ws.server.Shutdown(ctx)
}

// IsRunning returns true if the web server is running
func (ws *webServer) IsRunning() bool {
	return ws.running
}
