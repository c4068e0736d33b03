package services

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"sitelens/internal/models"

	"github.com/ternarybob/arbor"
)

// Pages with content at or below this length carry no analyzable text
const minContentLength = 10

var mdLinkTargetRule = regexp.MustCompile(`(^|[^!])\[[^\]]+\]\(([^)]+)\)`)

// Aggregator turns a crawl corpus into a navigable site analysis:
// per-page extraction, section grouping, and site-wide rollups.
type Aggregator struct {
	logger arbor.ILogger
}

func NewAggregator(logger arbor.ILogger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate filters the corpus to content pages, extracts each one,
// groups them into sections by first URL path segment, and computes
// site-wide statistics. Corpus-provided metrics take precedence over
// re-derivation from content.
func (a *Aggregator) Aggregate(corpus *models.CrawlCorpus) *models.SiteAnalysis {
	sectionPages := make(map[string][]models.ExtractedPage)
	sectionOrder := make([]string, 0)
	seenURLs := make(map[string]map[string]bool)

	siteIssues := make([]models.Issue, 0)
	stats := models.SiteStats{}

	for _, raw := range corpus.Pages {
		if len(raw.Content) <= minContentLength {
			continue
		}

		parsed, err := url.Parse(raw.URL)
		if err != nil || parsed.Host == "" {
			a.logger.Debug().Str("url", raw.URL).Msg("Skipping page with unresolvable URL")
			continue
		}

		sectionKey := "home"
		for _, part := range strings.Split(parsed.Path, "/") {
			if part != "" {
				sectionKey = part
				break
			}
		}

		if seenURLs[sectionKey] == nil {
			seenURLs[sectionKey] = make(map[string]bool)
		}
		if seenURLs[sectionKey][raw.URL] {
			continue // first occurrence wins
		}
		seenURLs[sectionKey][raw.URL] = true

		page := a.extractCorpusPage(raw, parsed.Path)
		page.Issues = EvaluatePage(page, models.PageFlags{}, false)

		if _, exists := sectionPages[sectionKey]; !exists {
			sectionOrder = append(sectionOrder, sectionKey)
		}
		sectionPages[sectionKey] = append(sectionPages[sectionKey], page)

		stats.TotalPages++
		stats.TotalWords += page.WordCount
		stats.TotalImages += page.ImageCount
		stats.ImagesWithoutAlt += page.ImagesWithoutAlt
		stats.TotalIssues += len(page.Issues)

		for _, issue := range page.Issues {
			issue.Page = page.Title
			siteIssues = append(siteIssues, issue)
		}
	}

	if stats.TotalPages > 0 {
		stats.AvgWordsPerPage = int(math.Round(float64(stats.TotalWords) / float64(stats.TotalPages)))
	}

	sections := make([]models.Section, 0, len(sectionOrder))
	for _, name := range sectionOrder {
		sections = append(sections, models.Section{
			Name:  name,
			Label: FormatSectionLabel(name),
			Pages: sectionPages[name],
		})
	}
	// Descending by page count; ties keep first-seen insertion order
	sort.SliceStable(sections, func(i, j int) bool {
		return len(sections[i].Pages) > len(sections[j].Pages)
	})

	return &models.SiteAnalysis{
		URL:        corpus.URLCrawled,
		TotalPages: stats.TotalPages,
		Sections:   sections,
		Stats:      stats,
		Issues:     siteIssues,
	}
}

// extractCorpusPage builds the page model from a raw corpus entry,
// preferring precomputed metrics where the producer supplied them.
func (a *Aggregator) extractCorpusPage(raw models.RawPage, path string) models.ExtractedPage {
	page := models.ExtractedPage{
		URL:         raw.URL,
		Path:        path,
		Description: raw.Description,
		Snippet:     ExtractSnippet(raw.Content),
	}

	page.Title = raw.Title
	if page.Title == "" {
		page.Title = ExtractTitleMarkdown(raw.Content, raw.URL)
	}

	page.Headings = raw.Headings
	if len(page.Headings) == 0 {
		page.Headings = ExtractHeadingsMarkdown(raw.Content)
	}

	page.WordCount = raw.WordCount
	if page.WordCount == 0 {
		page.WordCount = len(strings.Fields(raw.Content))
	}

	if raw.ImageCount > 0 || len(raw.Images) > 0 {
		page.ImageCount = raw.ImageCount
		if page.ImageCount == 0 {
			page.ImageCount = len(raw.Images)
		}
		for _, img := range raw.Images {
			if strings.TrimSpace(img.Alt) == "" {
				page.ImagesWithoutAlt++
			}
		}
	} else {
		page.ImageCount, page.ImagesWithoutAlt = countMarkdownImages(raw.Content)
	}

	if raw.InternalLinkCount > 0 || raw.ExternalLinkCount > 0 {
		page.InternalLinks = raw.InternalLinkCount
		page.ExternalLinks = raw.ExternalLinkCount
	} else {
		page.InternalLinks, page.ExternalLinks = countMarkdownLinks(raw.Content, raw.URL)
	}

	return page
}

func countMarkdownImages(markdown string) (total int, withoutAlt int) {
	for _, match := range mdImageRule.FindAllStringSubmatch(markdown, -1) {
		total++
		if strings.TrimSpace(match[1]) == "" {
			withoutAlt++
		}
	}
	return total, withoutAlt
}

func countMarkdownLinks(markdown, pageURL string) (internal int, external int) {
	origin := ""
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		origin = parsed.Scheme + "://" + parsed.Host
	}

	for _, match := range mdLinkTargetRule.FindAllStringSubmatch(markdown, -1) {
		target := strings.TrimSpace(match[2])
		lower := strings.ToLower(target)
		switch {
		case target == "" || strings.HasPrefix(target, "#"):
		case strings.HasPrefix(target, "/"):
			internal++
		case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
			if origin != "" && strings.HasPrefix(target, origin) {
				internal++
			} else {
				external++
			}
		}
	}
	return internal, external
}

// FormatSectionLabel humanizes a section name: hyphens become spaces and
// each word's leading character is upper-cased.
func FormatSectionLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "-", " "))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
