package models

// Severity classifies how serious a detected page issue is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Heading represents a single h1-h6 heading found on a page.
// ID is a zero-based positional anchor ("h-0", "h-1", ...) assigned
// during live analysis so an external viewer can scroll to it.
type Heading struct {
	Tag   string `json:"tag"`
	Text  string `json:"text"`
	ID    string `json:"id,omitempty"`
	Level int    `json:"level"`
}

// Issue represents a content, SEO, or accessibility deficiency on a page
type Issue struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Page     string   `json:"page,omitempty"`
}

// ImageRef captures an image element's source and alternative text
type ImageRef struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// PageFlags holds document-level facts only derivable from live HTML
type PageFlags struct {
	HasViewport bool `json:"has_viewport"`
	HasOGImage  bool `json:"has_og_image"`
}

// ExtractedPage is the normalized page model produced by the extractor
type ExtractedPage struct {
	URL              string    `json:"url"`
	Path             string    `json:"path"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Headings         []Heading `json:"headings"`
	Snippet          string    `json:"snippet"`
	WordCount        int       `json:"word_count"`
	ImageCount       int       `json:"image_count"`
	ImagesWithoutAlt int       `json:"images_without_alt"`
	InternalLinks    int       `json:"internal_links"`
	ExternalLinks    int       `json:"external_links"`
	Issues           []Issue   `json:"issues"`
}

// Section groups pages sharing the first segment of their URL path
type Section struct {
	Name  string          `json:"name"`
	Label string          `json:"label"`
	Pages []ExtractedPage `json:"pages"`
}

// SiteStats holds site-wide rollups over all analyzed pages
type SiteStats struct {
	TotalPages       int `json:"total_pages"`
	TotalWords       int `json:"total_words"`
	AvgWordsPerPage  int `json:"avg_words_per_page"`
	TotalImages      int `json:"total_images"`
	ImagesWithoutAlt int `json:"images_without_alt"`
	TotalIssues      int `json:"total_issues"`
}

// SiteAnalysis is the full analysis result for one site
type SiteAnalysis struct {
	URL        string    `json:"url"`
	TotalPages int       `json:"totalPages"`
	Sections   []Section `json:"sections"`
	Stats      SiteStats `json:"stats"`
	Issues     []Issue   `json:"issues"`
}

// PageAnalysis is the single-page fallback payload. It carries the same
// stats and issues fields as a site analysis so callers can treat both
// results uniformly at the presentation boundary.
type PageAnalysis struct {
	ExtractedPage
	Stats  SiteStats `json:"stats"`
	Flags  PageFlags `json:"flags"`
	IsLive bool      `json:"is_live"`
}
