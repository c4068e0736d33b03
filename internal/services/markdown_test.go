package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownHeadings(t *testing.T) {
	html := RenderMarkdown("# One\n## Two\n###### Six")
	assert.Contains(t, html, "<h1>One</h1>")
	assert.Contains(t, html, "<h2>Two</h2>")
	assert.Contains(t, html, "<h6>Six</h6>")
}

func TestRenderMarkdownInline(t *testing.T) {
	html := RenderMarkdown("some **bold** and *italic* text")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<em>italic</em>")
	// Bold runs before italic so ** never becomes nested <em>
	assert.NotContains(t, html, "<em>*")
}

func TestRenderMarkdownImagesBeforeLinks(t *testing.T) {
	html := RenderMarkdown("![logo](/logo.png) and [docs](/docs)")
	assert.Contains(t, html, `<img src="/logo.png" alt="logo"`)
	assert.Contains(t, html, `<a href="/docs"`)
	assert.Contains(t, html, `>docs</a>`)
	// The image must not be re-matched as a link
	assert.NotContains(t, html, `<a href="/logo.png"`)
}

func TestRenderMarkdownParagraphs(t *testing.T) {
	html := RenderMarkdown("first line of prose\n\nsecond line of prose")
	assert.Contains(t, html, "<p>first line of prose</p>")
	assert.Contains(t, html, "<p>second line of prose</p>")
}

func TestRenderMarkdownListRun(t *testing.T) {
	html := RenderMarkdown("- one\n- two\n* three")

	// All items collapse into a single list
	assert.Equal(t, 1, strings.Count(html, "<ul"))
	assert.Contains(t, html, "<li>one</li>")
	assert.Contains(t, html, "<li>two</li>")
	assert.Contains(t, html, "<li>three</li>")
}

func TestRenderMarkdownHorizontalRule(t *testing.T) {
	html := RenderMarkdown("above\n---\nbelow")
	assert.Contains(t, html, "<hr")
	assert.NotContains(t, html, "<p>---</p>")
}

func TestRenderDocumentShell(t *testing.T) {
	doc := RenderDocument("# Title\n\nBody text", "https://example.com/docs/page")

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>"))
	assert.Contains(t, doc, `<base href="https://example.com/">`)
	assert.Contains(t, doc, "<h1>Title</h1>")
	assert.Contains(t, doc, "<p>Body text</p>")

	// Scroll anchor wiring for the embedding viewer
	assert.Contains(t, doc, "data-anchor-id")
	assert.Contains(t, doc, "'h-'+i")
	assert.Contains(t, doc, "scrollToAnchor")
}

func TestRenderedHeadingsSurviveExtraction(t *testing.T) {
	doc := RenderDocument("# Title\n\nbody copy", "https://example.com/")

	headings := ExtractHeadingsHTML(doc)
	require.Len(t, headings, 1)
	assert.Equal(t, "h1", headings[0].Tag)
	assert.Equal(t, "Title", headings[0].Text)
}

func TestRenderDocumentUnparseableURL(t *testing.T) {
	doc := RenderDocument("plain text content", "::::")
	require.Contains(t, doc, `<base href="/">`)
	assert.Contains(t, doc, "<p>plain text content</p>")
}
