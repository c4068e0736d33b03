package services

import (
	"fmt"

	"sitelens/internal/models"
)

// Minimum words before a page is flagged as thin content
const lowWordCountThreshold = 100

// EvaluatePage applies the deterministic issue rule set to one extracted
// page. Rules are independent predicates over already-extracted facts and
// their order is stable, so the same input always yields the same list.
// The viewport and og:image rules only apply to live-page analysis where
// the document-level flags are meaningful.
func EvaluatePage(page models.ExtractedPage, flags models.PageFlags, live bool) []models.Issue {
	issues := make([]models.Issue, 0)

	hasH1 := false
	for _, h := range page.Headings {
		if h.Level == 1 {
			hasH1 = true
			break
		}
	}
	if !hasH1 {
		issues = append(issues, models.Issue{
			Severity: models.SeverityCritical,
			Message:  "No H1 heading",
		})
	}

	if page.Description == "" {
		issues = append(issues, models.Issue{
			Severity: models.SeverityCritical,
			Message:  "Missing meta description",
		})
	}

	if page.WordCount < lowWordCountThreshold {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "Low word count",
		})
	}

	if live && !flags.HasViewport {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "Missing viewport meta tag",
		})
	}

	if live && !flags.HasOGImage {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  "No og:image meta tag",
		})
	}

	if page.ImagesWithoutAlt > 0 {
		issues = append(issues, models.Issue{
			Severity: models.SeverityWarning,
			Message:  fmt.Sprintf("%d images missing alt text", page.ImagesWithoutAlt),
		})
	}

	return issues
}
