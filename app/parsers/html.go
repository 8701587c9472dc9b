package parsers

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"GoRAGWorkshop/app/faults"
)

type HTML struct{}

var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"head":     true,
}

func (HTML) Parse(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", faults.Parse("parse html", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			t := strings.TrimSpace(n.Data)
			if t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " "), nil
}
