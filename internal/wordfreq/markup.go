package wordfreq

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// invisible lists elements whose text never reaches the reader.
const invisible = "script, style, noscript, template, iframe, svg"

// StripMarkup parses an HTML document and returns its visible text.
//
// Text nodes are joined with single spaces so adjacent block elements do not run together.
func StripMarkup(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}

	doc.Find(invisible).Remove()

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range doc.Nodes {
		walk(n)
	}

	return strings.Join(parts, " "), nil
}
