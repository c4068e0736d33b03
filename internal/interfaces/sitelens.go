package interfaces

import (
	"context"

	"sitelens/internal/models"
)

// Storage is the corpus repository: imported crawl corpora persisted
// across restarts, looked up by site identifier or exact page URL.
type Storage interface {
	SaveCorpus(site string, corpus *models.CrawlCorpus) error
	FindCorpus(siteIdentifier string) (*models.CrawlCorpus, error)
	FindPage(pageURL string) (*models.RawPage, error)
	ImportDirectory(dir string) (int, error)
	Corpora() ([]models.CorpusInfo, error)
	Close() error
}

// FetchResult is the outcome of one upstream page fetch
type FetchResult struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string
}

// Fetcher retrieves a single resource over HTTP. Implementations honor
// context cancellation and apply a bounded timeout; they never retry.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// PageAnalyzer fetches one live URL and produces a single-page analysis
type PageAnalyzer interface {
	AnalyzePage(ctx context.Context, pageURL string) (*models.PageAnalysis, error)
}

// WebService controls the HTTP server lifecycle
type WebService interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool
}
