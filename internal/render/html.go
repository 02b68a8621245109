package render

import (
	"regexp"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

var sectionPattern = regexp.MustCompile(`(?m)^\[([A-Z0-9 ]+)\]$`)

// HTML renders a Markdown report as a complete standalone page. Bracketed
// section markers such as "[KPI]" become second-level headings.
func HTML(title, md string) []byte {
	src := sectionPattern.ReplaceAllString(md, "## $1\n")
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.ToHTML([]byte(src), p, r)
}
