package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"sitelens/internal/common"
	"sitelens/internal/interfaces"

	"github.com/ternarybob/arbor"
)

// ProxyBasePath is the endpoint prefix intercepted navigation is
// redirected through so browsing stays inside the analysis tool.
const ProxyBasePath = "/api/proxy?url="

var headOpenRule = regexp.MustCompile(`(?i)<head(\s[^>]*)?>`)

// RenderResult is a browser-ready response: either a rewritten HTML
// document or an untouched passthrough of a non-HTML resource.
type RenderResult struct {
	Body        []byte
	ContentType string
	StatusCode  int
}

// Proxy produces safely embeddable documents from live pages or from
// archived corpus pages. It never re-runs analysis; it only transforms
// content for display.
type Proxy struct {
	fetcher interfaces.Fetcher
	storage interfaces.Storage
	logger  arbor.ILogger
}

func NewProxy(fetcher interfaces.Fetcher, storage interfaces.Storage, logger arbor.ILogger) *Proxy {
	return &Proxy{
		fetcher: fetcher,
		storage: storage,
		logger:  logger,
	}
}

// RenderLive fetches the target and returns an embeddable rendering.
// Non-HTML resources pass through byte-for-byte with their original
// content type. Failures always yield a renderable HTML error document,
// never a bare fault.
func (p *Proxy) RenderLive(ctx context.Context, targetURL string) *RenderResult {
	parsed, err := url.Parse(targetURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return p.errorDocument("Invalid URL")
	}

	result, err := p.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		p.logger.Warn().Err(err).Str("url", targetURL).Msg("Proxy fetch failed")
		return p.errorDocument(errorMessage(err))
	}

	if !strings.Contains(result.ContentType, "text/html") {
		// Images, stylesheets, scripts, fonts: untouched passthrough
		return &RenderResult{
			Body:        result.Body,
			ContentType: result.ContentType,
			StatusCode:  result.StatusCode,
		}
	}

	rewritten := p.rewriteHTML(string(result.Body), parsed)
	return &RenderResult{
		Body:        []byte(rewritten),
		ContentType: "text/html; charset=utf-8",
		StatusCode:  http.StatusOK,
	}
}

// rewriteHTML injects the <base> tag and click-interception script as the
// first children of <head>, or prepends them when no head tag exists.
// The base tag makes relative resources resolve against the original
// origin directly, so only navigation goes back through the proxy.
func (p *Proxy) rewriteHTML(htmlContent string, target *url.URL) string {
	injection := buildInjection(target)

	if loc := headOpenRule.FindStringIndex(htmlContent); loc != nil {
		return htmlContent[:loc[1]] + injection + htmlContent[loc[1]:]
	}
	return injection + htmlContent
}

func buildInjection(target *url.URL) string {
	origin := target.Scheme + "://" + target.Host
	baseJSON, _ := json.Marshal(target.String())
	proxyJSON, _ := json.Marshal(ProxyBasePath)

	return fmt.Sprintf(`<base href="%s/">
<script>
(function(){
  var base = %s;
  var proxy = %s;
  document.addEventListener('click', function(e){
    if (e.defaultPrevented) return;
    var el = e.target && e.target.closest ? e.target.closest('a[href]') : null;
    if (!el) return;
    var href = el.getAttribute('href');
    if (!href || href.startsWith('#') || href.startsWith('javascript:') ||
        href.startsWith('mailto:') || href.startsWith('tel:') ||
        href.startsWith(proxy)) return;
    try {
      var abs = new URL(el.href || href, base).href;
      if (!abs.startsWith('http')) return;
      e.preventDefault();
      window.parent.postMessage({ type: 'navigationStarted' }, '*');
      window.location.href = proxy + encodeURIComponent(abs);
    } catch(e){}
  });
})();
</script>`, origin, baseJSON, proxyJSON)
}

// RenderArchived looks the page up in the stored crawl corpus by exact
// URL and serves its Markdown as a styled document with the same base-URL
// and scroll-anchor affordances. Archived pages are not live-browsable,
// so no click interception is injected.
func (p *Proxy) RenderArchived(pageURL string) (*RenderResult, error) {
	page, err := p.storage.FindPage(pageURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.Content) == "" {
		return nil, common.NewNotFoundError("page_empty", "Page not found in crawl data")
	}

	return &RenderResult{
		Body:        []byte(RenderDocument(page.Content, pageURL)),
		ContentType: "text/html; charset=utf-8",
		StatusCode:  http.StatusOK,
	}, nil
}

// errorDocument renders a minimal, visually distinct error page. The
// proxy must always hand the viewport renderable content.
func (p *Proxy) errorDocument(msg string) *RenderResult {
	doc := fmt.Sprintf(`<html><body style="font-family:sans-serif;padding:2rem;background:#111;color:#888">
  <p style="margin:0">Could not load this website.</p>
  <p style="font-size:0.8rem;margin-top:0.5rem;opacity:0.5">%s</p>
</body></html>`, html.EscapeString(msg))

	return &RenderResult{
		Body:        []byte(doc),
		ContentType: "text/html; charset=utf-8",
		StatusCode:  http.StatusBadGateway,
	}
}

func errorMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.UserMessage()
	}
	return err.Error()
}
