// Package rendering turns assistant state into HTML fragments and pages.
package rendering

import (
	"regexp"
	"strings"
)

// EscapeHTML escapes the characters that are special in HTML text and
// attribute values: & < > " '
func EscapeHTML(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/4)

	for _, r := range text {
		switch r {
		case '&':
			result.WriteString("&amp;")
		case '<':
			result.WriteString("&lt;")
		case '>':
			result.WriteString("&gt;")
		case '"':
			result.WriteString("&quot;")
		case '\'':
			result.WriteString("&#039;")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

// SafeURL returns link when it is an http(s) or mailto URL and "#" otherwise,
// so backend-supplied links cannot inject script URLs into href attributes.
func SafeURL(link string) string {
	trimmed := strings.TrimSpace(link)
	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "mailto:"):
		return trimmed
	}
	return "#"
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FilenamePart replaces every character outside [A-Za-z0-9] with an underscore.
func FilenamePart(s string) string {
	return nonAlphanumeric.ReplaceAllString(s, "_")
}

// CoverLetterFilename is the download name for a letter written for company.
func CoverLetterFilename(company string) string {
	return "cover_letter_" + FilenamePart(company) + ".txt"
}

// BriefFilename is the download name for an interview brief about company.
func BriefFilename(company string) string {
	return "interview_brief_" + FilenamePart(company) + ".txt"
}
