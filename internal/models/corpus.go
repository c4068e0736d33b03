package models

import "encoding/json"

// RawPage is one page of a crawl corpus. Content holds the captured
// Markdown. The remaining metric fields are optional precomputed values
// supplied by the crawl producer; when absent they are derived from
// Content by the extractor.
type RawPage struct {
	URL     string `json:"url"`
	Content string `json:"markdown"`
	Depth   int    `json:"depth"`

	Title             string     `json:"title,omitempty"`
	Description       string     `json:"description,omitempty"`
	WordCount         int        `json:"word_count,omitempty"`
	HeadingCount      int        `json:"heading_count,omitempty"`
	InternalLinkCount int        `json:"internal_link_count,omitempty"`
	ExternalLinkCount int        `json:"external_link_count,omitempty"`
	ImageCount        int        `json:"image_count,omitempty"`
	Images            []ImageRef `json:"images,omitempty"`
	Headings          []Heading  `json:"headings,omitempty"`
}

// UnmarshalJSON accepts the page body under either "markdown" or
// "content"; crawl producers have used both keys. "markdown" wins when
// both are present.
func (p *RawPage) UnmarshalJSON(data []byte) error {
	type rawPage RawPage
	aux := struct {
		*rawPage
		AltContent string `json:"content"`
	}{rawPage: (*rawPage)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.Content == "" {
		p.Content = aux.AltContent
	}
	return nil
}

// CrawlCorpus is a previously captured multi-page snapshot of one site,
// produced by the external crawler and consumed read-only.
type CrawlCorpus struct {
	Success    bool      `json:"success"`
	TotalPages int       `json:"total_pages"`
	URLCrawled string    `json:"url_crawled"`
	Pages      []RawPage `json:"pages"`
}

// CorpusInfo summarizes one stored corpus for status reporting
type CorpusInfo struct {
	Site       string `json:"site"`
	URLCrawled string `json:"url_crawled"`
	PageCount  int    `json:"page_count"`
	ImportedAt string `json:"imported_at"`
}
