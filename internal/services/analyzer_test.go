package services

import (
	"context"
	"testing"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

// stubFetcher returns a canned result or error without touching the network
type stubFetcher struct {
	result *interfaces.FetchResult
	err    error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (*interfaces.FetchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestAnalyzePage(t *testing.T) {
	html := `<html><head>
		<title>Landing</title>
		<meta name="description" content="desc">
		<meta name="viewport" content="width=device-width">
		<meta property="og:image" content="/og.png">
	</head><body><h1>Hello</h1><p>` + longText(200) + `</p></body></html>`

	fetcher := &stubFetcher{result: &interfaces.FetchResult{
		Body:        []byte(html),
		StatusCode:  200,
		ContentType: "text/html",
	}}

	analysis, err := NewAnalyzer(fetcher, arbor.NewLogger()).AnalyzePage(context.Background(), "https://example.com/landing")
	require.NoError(t, err)

	assert.True(t, analysis.IsLive)
	assert.Equal(t, "Landing", analysis.Title)
	assert.Empty(t, analysis.Issues)
	assert.Equal(t, 1, analysis.Stats.TotalPages)
	assert.Equal(t, analysis.WordCount, analysis.Stats.TotalWords)
	assert.Equal(t, analysis.WordCount, analysis.Stats.AvgWordsPerPage)
	assert.True(t, analysis.Flags.HasViewport)
	assert.True(t, analysis.Flags.HasOGImage)
}

func TestAnalyzePageLiveIssues(t *testing.T) {
	fetcher := &stubFetcher{result: &interfaces.FetchResult{
		Body:        []byte("<html><body><p>thin page</p></body></html>"),
		StatusCode:  200,
		ContentType: "text/html",
	}}

	analysis, err := NewAnalyzer(fetcher, arbor.NewLogger()).AnalyzePage(context.Background(), "https://example.com/")
	require.NoError(t, err)

	messages := make([]string, 0, len(analysis.Issues))
	for _, issue := range analysis.Issues {
		messages = append(messages, issue.Message)
	}
	assert.Contains(t, messages, "No H1 heading")
	assert.Contains(t, messages, "Missing viewport meta tag")
	assert.Contains(t, messages, "No og:image meta tag")
	assert.Equal(t, len(analysis.Issues), analysis.Stats.TotalIssues)
}

func TestAnalyzePageInvalidURL(t *testing.T) {
	analyzer := NewAnalyzer(&stubFetcher{}, arbor.NewLogger())

	for _, bad := range []string{"", "not-a-url", "ftp://example.com/x", "/relative/path"} {
		_, err := analyzer.AnalyzePage(context.Background(), bad)
		require.Error(t, err, bad)
		assert.Equal(t, 400, common.HTTPStatus(err), bad)
	}
}

func TestAnalyzePagePropagatesFetchErrors(t *testing.T) {
	fetchErr := common.NewTimeoutError("fetch_timeout", "Could not load this website in time")
	analyzer := NewAnalyzer(&stubFetcher{err: fetchErr}, arbor.NewLogger())

	_, err := analyzer.AnalyzePage(context.Background(), "https://slow.example.com/")
	require.Error(t, err)
	assert.Equal(t, 504, common.HTTPStatus(err))
}

func longText(words int) string {
	out := ""
	for i := 0; i < words; i++ {
		out += "word "
	}
	return out
}
