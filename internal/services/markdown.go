package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Markdown-to-HTML conversion for archived corpus pages. The transform
// order is load-bearing: later rules must not re-match text introduced by
// earlier ones (bold before italic, images before links, list items
// before the paragraph pass).

var (
	mdH6Rule     = regexp.MustCompile(`(?m)^######\s+(.+)$`)
	mdH5Rule     = regexp.MustCompile(`(?m)^#####\s+(.+)$`)
	mdH4Rule     = regexp.MustCompile(`(?m)^####\s+(.+)$`)
	mdH3Rule     = regexp.MustCompile(`(?m)^###\s+(.+)$`)
	mdH2Rule     = regexp.MustCompile(`(?m)^##\s+(.+)$`)
	mdH1Rule     = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	mdBoldRule   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	mdItalicRule = regexp.MustCompile(`\*(.+?)\*`)
	mdImageRule  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	mdAnchorRule = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	mdHRRule     = regexp.MustCompile(`(?m)^---$`)
	mdListRule   = regexp.MustCompile(`(?m)^[-*]\s+(.+)$`)
	mdListRun    = regexp.MustCompile(`((?:<li>.*</li>\n?)+)`)
)

// RenderMarkdown converts crawled Markdown into an HTML fragment with the
// fixed inline styling used by the embeddable document shell.
func RenderMarkdown(markdown string) string {
	html := markdown
	html = mdH6Rule.ReplaceAllString(html, "<h6>$1</h6>")
	html = mdH5Rule.ReplaceAllString(html, "<h5>$1</h5>")
	html = mdH4Rule.ReplaceAllString(html, "<h4>$1</h4>")
	html = mdH3Rule.ReplaceAllString(html, "<h3>$1</h3>")
	html = mdH2Rule.ReplaceAllString(html, "<h2>$1</h2>")
	html = mdH1Rule.ReplaceAllString(html, "<h1>$1</h1>")
	html = mdBoldRule.ReplaceAllString(html, "<strong>$1</strong>")
	html = mdItalicRule.ReplaceAllString(html, "<em>$1</em>")
	html = mdImageRule.ReplaceAllString(html, `<img src="$2" alt="$1" style="max-width:100%;height:auto;border-radius:8px;margin:1rem 0;">`)
	html = mdAnchorRule.ReplaceAllString(html, `<a href="$2" style="color:#38b8d0;">$1</a>`)
	html = mdHRRule.ReplaceAllString(html, `<hr style="border:none;border-top:1px solid #1e3a5f;margin:1.5rem 0;">`)
	html = mdListRule.ReplaceAllString(html, "<li>$1</li>")

	// Remaining non-empty, non-tag lines become paragraphs
	lines := strings.Split(html, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			lines[i] = ""
		case strings.HasPrefix(trimmed, "<"):
			lines[i] = trimmed
		default:
			lines[i] = "<p>" + trimmed + "</p>"
		}
	}
	html = strings.Join(lines, "\n")

	// Wrap consecutive <li> elements in a single <ul>
	html = mdListRun.ReplaceAllString(html, `<ul style="padding-left:1.5rem;margin:0.5rem 0;">$1</ul>`)

	return html
}

// RenderDocument wraps rendered Markdown in a self-contained HTML shell:
// a <base> tag so relative resources resolve against the page's origin,
// inline styling, and a script that tags headings with positional scroll
// anchors and answers scrollToAnchor messages from the embedding parent.
func RenderDocument(markdown, pageURL string) string {
	origin := ""
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		origin = parsed.Scheme + "://" + parsed.Host
	}

	return fmt.Sprintf(archivedDocumentShell, origin, RenderMarkdown(markdown))
}

const archivedDocumentShell = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <base href="%s/">
  <style>
    * { margin: 0; padding: 0; box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
      background: #050d1a;
      color: #d8f0f5;
      padding: 2rem 2.5rem;
      line-height: 1.7;
      max-width: 900px;
      margin: 0 auto;
    }
    h1 { font-size: 2rem; font-weight: 600; margin: 1.5rem 0 1rem; color: #fff; }
    h2 { font-size: 1.5rem; font-weight: 500; margin: 1.5rem 0 0.75rem; color: #e0f4f8; border-bottom: 1px solid rgba(56,184,208,0.15); padding-bottom: 0.4rem; }
    h3 { font-size: 1.2rem; font-weight: 500; margin: 1.2rem 0 0.5rem; color: #c0e8f0; }
    h4, h5, h6 { font-size: 1rem; font-weight: 500; margin: 1rem 0 0.4rem; color: #a0d0e0; }
    p { margin: 0.5rem 0; color: #b0ccd5; font-size: 0.95rem; }
    a { color: #38b8d0; text-decoration: none; }
    a:hover { text-decoration: underline; }
    strong { color: #e0f4f8; }
    img { max-width: 100%%; height: auto; border-radius: 8px; margin: 1rem 0; }
    ul, ol { padding-left: 1.5rem; margin: 0.5rem 0; }
    li { margin: 0.3rem 0; color: #b0ccd5; font-size: 0.95rem; }
    hr { border: none; border-top: 1px solid rgba(56,184,208,0.15); margin: 1.5rem 0; }
    ::-webkit-scrollbar { width: 6px; }
    ::-webkit-scrollbar-track { background: transparent; }
    ::-webkit-scrollbar-thumb { background: rgba(56,184,208,0.2); border-radius: 10px; }
  </style>
</head>
<body>
  %s
  <script>
    // Tag headings for scroll-to support
    var headings = document.querySelectorAll('h1,h2,h3,h4,h5,h6');
    for(var i=0;i<headings.length;i++){
      headings[i].setAttribute('data-anchor-id','h-'+i);
    }
    window.addEventListener('message',function(e){
      if(e.data && e.data.type==='scrollToAnchor'){
        var el=document.querySelector('[data-anchor-id="'+e.data.id+'"]');
        if(el) el.scrollIntoView({behavior:'smooth',block:'start'});
      }
    });
  </script>
</body>
</html>`
