package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"sitelens/internal/common"
	"sitelens/internal/models"

	"github.com/PuerkitoBio/goquery"
)

// Feature extraction over raw HTML or crawled Markdown. All functions are
// pure and total: malformed markup degrades to empty values, it never
// fails the pipeline.

const (
	snippetMinLength = 20
	snippetMaxLength = 150
)

var (
	mdHeadingPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)
	mdH1Pattern      = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	mdH2Pattern      = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	mdLinkPattern    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// parseDocument parses HTML into a goquery document. Unparseable input
// yields an empty document rather than an error.
func parseDocument(htmlContent string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	return doc
}

// ExtractHeadingsHTML returns all h1-h6 headings in document order.
// Nested markup is stripped to plain text and whitespace collapsed.
// Each surviving heading gets a zero-based positional anchor id.
func ExtractHeadingsHTML(htmlContent string) []models.Heading {
	return headingsFromDocument(parseDocument(htmlContent))
}

func headingsFromDocument(doc *goquery.Document) []models.Heading {
	headings := make([]models.Heading, 0)
	doc.Find("h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		text := common.CollapseWhitespace(s.Text())
		if text == "" {
			return
		}
		tag := goquery.NodeName(s)
		headings = append(headings, models.Heading{
			Tag:   tag,
			Text:  text,
			ID:    fmt.Sprintf("h-%d", len(headings)),
			Level: int(tag[1] - '0'),
		})
	})
	return headings
}

// ExtractHeadingsMarkdown returns headings from lines with 1-6 leading
// '#' characters. Bold markers are stripped and markdown links reduced to
// their display text; empty or single-character results are discarded as
// malformed.
func ExtractHeadingsMarkdown(markdown string) []models.Heading {
	headings := make([]models.Heading, 0)
	for _, match := range mdHeadingPattern.FindAllStringSubmatch(markdown, -1) {
		text := cleanMarkdownInline(match[2])
		if len([]rune(text)) <= 1 {
			continue
		}
		level := len(match[1])
		headings = append(headings, models.Heading{
			Tag:   fmt.Sprintf("h%d", level),
			Text:  text,
			Level: level,
		})
	}
	return headings
}

func cleanMarkdownInline(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = mdLinkPattern.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// ExtractTitleHTML reads the document <title>, falling back to a title
// derived from the URL path. Never empty for a non-empty URL.
func ExtractTitleHTML(htmlContent, pageURL string) string {
	return titleFromDocument(parseDocument(htmlContent), pageURL)
}

func titleFromDocument(doc *goquery.Document, pageURL string) string {
	if title := common.CollapseWhitespace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return TitleFromURL(pageURL)
}

// ExtractTitleMarkdown prefers the first level-1 heading, then the first
// level-2 heading, then the humanized last URL path segment.
func ExtractTitleMarkdown(markdown, pageURL string) string {
	if m := mdH1Pattern.FindStringSubmatch(markdown); m != nil {
		if title := strings.TrimSpace(strings.ReplaceAll(m[1], "**", "")); title != "" {
			return title
		}
	}
	if m := mdH2Pattern.FindStringSubmatch(markdown); m != nil {
		if title := strings.TrimSpace(strings.ReplaceAll(m[1], "**", "")); title != "" {
			return title
		}
	}
	return TitleFromURL(pageURL)
}

// TitleFromURL humanizes the last non-empty path segment of a URL:
// hyphens become spaces and each word's leading character is upper-cased.
// Root-level URLs resolve to "Home".
func TitleFromURL(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "Home"
	}

	segment := ""
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			segment = part
		}
	}
	if segment == "" {
		return "Home"
	}

	words := strings.Fields(strings.ReplaceAll(segment, "-", " "))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// ExtractDescription returns the content of the first meta tag whose name
// or property is "description" or "og:description", in either attribute
// order. Empty when absent.
func ExtractDescription(htmlContent string) string {
	return descriptionFromDocument(parseDocument(htmlContent))
}

func descriptionFromDocument(doc *goquery.Document) string {
	description := ""
	doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		key := s.AttrOr("name", "")
		if key == "" {
			key = s.AttrOr("property", "")
		}
		switch key {
		case "description", "og:description":
			description = strings.TrimSpace(s.AttrOr("content", ""))
			return false
		}
		return true
	})
	return description
}

// ExtractSnippet returns the first trimmed line longer than 20 characters
// that is not a heading, image, or bare link line, truncated to 150
// characters. Empty when no line qualifies.
func ExtractSnippet(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if len([]rune(trimmed)) <= snippetMinLength {
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "![") || strings.HasPrefix(trimmed, "[") {
			continue
		}
		runes := []rune(trimmed)
		if len(runes) > snippetMaxLength {
			return string(runes[:snippetMaxLength])
		}
		return trimmed
	}
	return ""
}

// CountWords counts words in the visible text of the document body.
// Script and style content is excluded.
func CountWords(htmlContent string) int {
	return wordsFromDocument(parseDocument(htmlContent))
}

func wordsFromDocument(doc *goquery.Document) int {
	body := doc.Find("body")
	if len(body.Nodes) == 0 {
		return 0
	}
	return common.CountWordsIn(common.VisibleText(body.Nodes[0]))
}

// CountImages counts image elements and those missing alternative text.
// An image is missing alt when the attribute is absent or blank after
// trimming.
func CountImages(htmlContent string) (total int, withoutAlt int, refs []models.ImageRef) {
	return imagesFromDocument(parseDocument(htmlContent))
}

func imagesFromDocument(doc *goquery.Document) (total int, withoutAlt int, refs []models.ImageRef) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		total++
		alt, exists := s.Attr("alt")
		if !exists || strings.TrimSpace(alt) == "" {
			withoutAlt++
		}
		refs = append(refs, models.ImageRef{
			Src: s.AttrOr("src", ""),
			Alt: strings.TrimSpace(alt),
		})
	})
	return total, withoutAlt, refs
}

// CountLinks classifies anchor hrefs: links starting with "/" or with the
// page's own origin are internal, other http(s) links are external.
// Fragment-only, javascript:, and non-http schemes count as neither.
func CountLinks(htmlContent, pageURL string) (internal int, external int) {
	return linksFromDocument(parseDocument(htmlContent), pageURL)
}

func linksFromDocument(doc *goquery.Document, pageURL string) (internal int, external int) {
	origin := ""
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		origin = parsed.Scheme + "://" + parsed.Host
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "javascript:") {
			return
		}

		switch {
		case strings.HasPrefix(href, "/"):
			internal++
		case strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://"):
			if origin != "" && strings.HasPrefix(href, origin) {
				internal++
			} else {
				external++
			}
		}
	})
	return internal, external
}

// ExtractFlags reports document-level facts only meaningful for live
// HTML: viewport and og:image meta presence.
func ExtractFlags(htmlContent string) models.PageFlags {
	return flagsFromDocument(parseDocument(htmlContent))
}

func flagsFromDocument(doc *goquery.Document) models.PageFlags {
	return models.PageFlags{
		HasViewport: doc.Find(`meta[name="viewport"]`).Length() > 0,
		HasOGImage:  doc.Find(`meta[property="og:image"], meta[name="og:image"]`).Length() > 0,
	}
}

// ExtractPageHTML runs the full HTML-mode extraction over one parse of
// the document and returns the normalized page model plus its live-only
// flags. Issues are left for the evaluator.
func ExtractPageHTML(htmlContent, pageURL string) (models.ExtractedPage, models.PageFlags) {
	doc := parseDocument(htmlContent)

	path := ""
	if parsed, err := url.Parse(pageURL); err == nil {
		path = parsed.Path
	}

	imageCount, withoutAlt, _ := imagesFromDocument(doc)
	internal, external := linksFromDocument(doc, pageURL)

	page := models.ExtractedPage{
		URL:              pageURL,
		Path:             path,
		Title:            titleFromDocument(doc, pageURL),
		Description:      descriptionFromDocument(doc),
		Headings:         headingsFromDocument(doc),
		WordCount:        wordsFromDocument(doc),
		ImageCount:       imageCount,
		ImagesWithoutAlt: withoutAlt,
		InternalLinks:    internal,
		ExternalLinks:    external,
	}
	return page, flagsFromDocument(doc)
}
