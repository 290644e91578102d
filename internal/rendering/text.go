package rendering

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// blockSelectors end a line when flattening HTML to text.
const blockSelectors = "p, h1, h2, h3, h4, div, li, br"

// PlainText flattens an HTML fragment to text, one line per block element.
// Used when printing rendered briefs to a terminal.
func PlainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style").Remove()
	doc.Find(blockSelectors).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
