// Package markdown converts AI-generated briefs to HTML.
//
// This is deliberately a small subset of Markdown, applied line by line:
//
//   - "# ", "## " and "### " at line start become h1, h2 and h3
//   - **text** becomes strong, *text* becomes em
//   - an embedded </p> is followed by a new <p>, and a leading newline becomes <br>
//   - every non-empty line is wrapped in a paragraph
//
// Lists, links, code blocks and tables pass through as plain text, and HTML
// embedded in the source is not escaped: briefs come from our own backend and
// are trusted. Options.Sanitize runs the output through a bluemonday policy for
// deployments that want it; it is off by default.
package markdown

import (
	"html/template"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Order matters: longer heading markers first, bold before italic, and
// paragraph wrapping last.
var rules = []rule{
	{regexp.MustCompile(`(?mi)^### (.*)$`), `<h3>${1}</h3>`},
	{regexp.MustCompile(`(?mi)^## (.*)$`), `<h2>${1}</h2>`},
	{regexp.MustCompile(`(?mi)^# (.*)$`), `<h1>${1}</h1>`},
	{regexp.MustCompile(`\*\*(.*?)\*\*`), `<strong>${1}</strong>`},
	{regexp.MustCompile(`\*(.*?)\*`), `<em>${1}</em>`},
	{regexp.MustCompile(`</p>`), `</p><p>`},
	{regexp.MustCompile(`^\n`), `<br>`},
	{regexp.MustCompile(`(?m)^(.+)$`), `<p>${1}</p>`},
}

// Options configures a Renderer.
type Options struct {
	Sanitize bool
}

// Renderer converts Markdown to HTML.
type Renderer struct {
	policy *bluemonday.Policy
}

// New creates a renderer.
func New(opts Options) *Renderer {
	r := &Renderer{}
	if opts.Sanitize {
		r.policy = bluemonday.UGCPolicy()
	}
	return r
}

// Render converts src to HTML.
func (r *Renderer) Render(src string) template.HTML {
	out := ToHTML(src)
	if r != nil && r.policy != nil {
		out = r.policy.Sanitize(out)
	}
	//nolint:gosec // brief text is trusted backend output; see package doc
	return template.HTML(out)
}

// ToHTML applies the subset rules to src without sanitising.
func ToHTML(src string) string {
	out := src
	for _, r := range rules {
		out = r.pattern.ReplaceAllString(out, r.replacement)
	}
	return out
}
