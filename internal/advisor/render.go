package advisor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var tableClasses = []string{"table", "table-striped", "table-bordered"}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// RenderHTML converts Markdown to an HTML fragment and adds the bootstrap
// table classes to every table.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to parse generated html: %w", err)
	}
	doc.Find("table").AddClass(tableClasses...)

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize html: %w", err)
	}
	return strings.TrimSpace(out), nil
}
