package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// healthyRowsXPath selects table rows whose class list contains status-ok.
const healthyRowsXPath = `//tr[contains(concat(' ', normalize-space(@class), ' '), ' status-ok ')]`

// HealthyRows returns the rows of doc marked as working builds, in document order.
func HealthyRows(doc *html.Node) ([]*html.Node, error) {
	return htmlquery.QueryAll(doc, healthyRowsXPath)
}

// RowText joins every text node under n with single spaces.
func RowText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// FirstHealthyMatch scans healthy rows in document order and returns the first
// substring of a row's text matching pattern, or "" when no healthy row matches.
func FirstHealthyMatch(page string, pattern *regexp.Regexp) (string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse catalog page: %w", err)
	}
	rows, err := HealthyRows(doc)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		if m := pattern.FindString(RowText(row)); m != "" {
			return m, nil
		}
	}
	return "", nil
}
