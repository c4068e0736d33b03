package services

import (
	"context"
	"net/url"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"
	"sitelens/internal/models"

	"github.com/ternarybob/arbor"
)

// analyzer fetches one live URL and runs the full HTML-mode extraction
// and issue evaluation against it. The result mirrors one entry of a
// site analysis so single-page and crawl results present uniformly.
type analyzer struct {
	fetcher interfaces.Fetcher
	logger  arbor.ILogger
}

func NewAnalyzer(fetcher interfaces.Fetcher, logger arbor.ILogger) interfaces.PageAnalyzer {
	return &analyzer{
		fetcher: fetcher,
		logger:  logger,
	}
}

func (a *analyzer) AnalyzePage(ctx context.Context, pageURL string) (*models.PageAnalysis, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, common.NewInputError("invalid_url", "Missing or invalid url").WithCause(err)
	}

	result, err := a.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		a.logger.Warn().Err(err).Str("url", pageURL).Msg("Live page fetch failed")
		return nil, err
	}

	page, flags := ExtractPageHTML(string(result.Body), pageURL)
	page.Issues = EvaluatePage(page, flags, true)

	stats := models.SiteStats{
		TotalPages:       1,
		TotalWords:       page.WordCount,
		AvgWordsPerPage:  page.WordCount,
		TotalImages:      page.ImageCount,
		ImagesWithoutAlt: page.ImagesWithoutAlt,
		TotalIssues:      len(page.Issues),
	}

	a.logger.Info().
		Str("url", pageURL).
		Int("headings", len(page.Headings)).
		Int("issues", len(page.Issues)).
		Msg("Live page analyzed")

	return &models.PageAnalysis{
		ExtractedPage: page,
		Stats:         stats,
		Flags:         flags,
		IsLive:        true,
	}, nil
}
