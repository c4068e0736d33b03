package services

import (
	"testing"

	"sitelens/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluatePageCleanLivePage(t *testing.T) {
	page := models.ExtractedPage{
		Headings:    []models.Heading{{Tag: "h1", Text: "Title", Level: 1}},
		Description: "A description",
		WordCount:   500,
	}
	flags := models.PageFlags{HasViewport: true, HasOGImage: true}

	assert.Empty(t, EvaluatePage(page, flags, true))
}

func TestEvaluatePageRuleOrder(t *testing.T) {
	page := models.ExtractedPage{
		Headings:         []models.Heading{{Tag: "h2", Text: "Sub", Level: 2}},
		WordCount:        40,
		ImageCount:       3,
		ImagesWithoutAlt: 2,
	}

	issues := EvaluatePage(page, models.PageFlags{}, true)
	require.Len(t, issues, 6)

	assert.Equal(t, "No H1 heading", issues[0].Message)
	assert.Equal(t, models.SeverityCritical, issues[0].Severity)
	assert.Equal(t, "Missing meta description", issues[1].Message)
	assert.Equal(t, models.SeverityCritical, issues[1].Severity)
	assert.Equal(t, "Low word count", issues[2].Message)
	assert.Equal(t, models.SeverityWarning, issues[2].Severity)
	assert.Equal(t, "Missing viewport meta tag", issues[3].Message)
	assert.Equal(t, "No og:image meta tag", issues[4].Message)
	assert.Equal(t, "2 images missing alt text", issues[5].Message)
	assert.Equal(t, models.SeverityWarning, issues[5].Severity)

	// Same input, same output
	assert.Equal(t, issues, EvaluatePage(page, models.PageFlags{}, true))
}

func TestEvaluatePageArchivedSkipsLiveRules(t *testing.T) {
	page := models.ExtractedPage{
		Headings:    []models.Heading{{Tag: "h1", Text: "Title", Level: 1}},
		Description: "desc",
		WordCount:   200,
	}

	// Flags are meaningless for archived pages and must not fire
	issues := EvaluatePage(page, models.PageFlags{}, false)
	assert.Empty(t, issues)
}

func TestEvaluatePageWordCountBoundary(t *testing.T) {
	page := models.ExtractedPage{
		Headings:    []models.Heading{{Tag: "h1", Text: "T", Level: 1}},
		Description: "d",
		WordCount:   100,
	}
	assert.Empty(t, EvaluatePage(page, models.PageFlags{HasViewport: true, HasOGImage: true}, true))

	page.WordCount = 99
	issues := EvaluatePage(page, models.PageFlags{HasViewport: true, HasOGImage: true}, true)
	require.Len(t, issues, 1)
	assert.Equal(t, "Low word count", issues[0].Message)
}
