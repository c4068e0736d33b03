package common

import (
	"strings"

	"golang.org/x/net/html"
)

// VisibleText gets the rendered text content of an HTML node and its
// children, skipping script, style, and noscript subtrees.
func VisibleText(node *html.Node) string {
	var text strings.Builder

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(node)
	return strings.TrimSpace(text.String())
}

// CollapseWhitespace trims a string and folds runs of whitespace into
// single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CountWordsIn splits visible text on whitespace and returns the word count
func CountWordsIn(text string) int {
	return len(strings.Fields(text))
}
