// Package observability provides formatted CLI output and service metrics.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jonathan/job-assistant/internal/markdown"
	"github.com/jonathan/job-assistant/internal/rendering"
	"github.com/jonathan/job-assistant/internal/state"
	"github.com/jonathan/job-assistant/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
	// MaxItems caps list output. Zero means maxItemsToShow; negative shows all.
	MaxItems int
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) limit(n int) int {
	switch {
	case p.MaxItems < 0:
		return n
	case p.MaxItems == 0:
		return min(n, maxItemsToShow)
	default:
		return min(n, p.MaxItems)
	}
}

// truncate shortens s to width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func (p *Printer) more(sb *strings.Builder, total, shown int, noun string) {
	if total > shown {
		fmt.Fprintf(sb, "... and %d more %s\n", total-shown, noun)
	}
}

// PrintUpload outputs the skills extracted from an uploaded resume. Size is
// the uploaded file's size in bytes.
func (p *Printer) PrintUpload(res types.UploadResult, size int64) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "File:    %s (%s)\n", res.Filename, humanize.Bytes(uint64(max(size, 0))))
	fmt.Fprintf(&sb, "Skills:  %s found\n", humanize.Comma(int64(len(res.Skills))))
	if len(res.Skills) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(res.Skills, ", "))
	}
	p.printBox("RESUME ANALYZED", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobs outputs job search results, numbered by their index.
func (p *Printer) PrintJobs(jobs []types.Job) {
	if len(jobs) == 0 {
		p.printBox("JOB MATCHES", "No jobs found. Try a different location.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %s jobs\n\n", humanize.Comma(int64(len(jobs))))

	count := p.limit(len(jobs))
	for i := 0; i < count; i++ {
		job := jobs[i]
		fmt.Fprintf(&sb, "[%d] %s\n", i, job.Title)
		fmt.Fprintf(&sb, "    %s · %s\n", job.Company, job.Location)
		if job.Link != "" {
			fmt.Fprintf(&sb, "    %s\n", job.Link)
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}
	p.more(&sb, len(jobs), count, "jobs")

	p.printBox("JOB MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSkillAnalysis outputs matched and missing skills.
func (p *Printer) PrintSkillAnalysis(a types.SkillAnalysis) {
	var sb strings.Builder

	sb.WriteString("Matched:\n")
	if len(a.MatchedSkills) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, s := range a.MatchedSkills {
		fmt.Fprintf(&sb, "  ✓ %s\n", s)
	}

	sb.WriteString("\nMissing:\n")
	if !a.HasGaps() {
		fmt.Fprintf(&sb, "  %s\n", rendering.NoSkillGapsText)
	}
	for _, s := range a.MissingSkills {
		fmt.Fprintf(&sb, "  ✗ %s\n", s)
	}

	p.printBox("SKILL GAP ANALYSIS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCourses outputs learning resources per skill.
func (p *Printer) PrintCourses(sets []types.CourseSet) {
	if len(sets) == 0 {
		return
	}

	var sb strings.Builder
	for i, set := range sets {
		fmt.Fprintf(&sb, "Learn %s\n", set.Skill)
		all := set.All()
		count := p.limit(len(all))
		for _, c := range all[:count] {
			fmt.Fprintf(&sb, "  • %s (%s)\n    %s\n", c.Title, c.Platform, c.URL)
		}
		p.more(&sb, len(all), count, "courses")
		if i < len(sets)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("LEARNING RESOURCES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResearch outputs the AI brief as plain text followed by the
// categorised findings.
func (p *Printer) PrintResearch(r types.Research, md *markdown.Renderer) error {
	if md == nil {
		md = markdown.New(markdown.Options{})
	}
	brief, err := rendering.PlainText(string(md.Render(r.AIBrief)))
	if err != nil {
		return fmt.Errorf("failed to format brief: %w", err)
	}

	p.printBox("INTERVIEW BRIEF: "+r.CompanyName, brief)
	p.printItems("RECENT NEWS", r.CompanyInfo.News, rendering.NoNewsText)
	p.printItems("CULTURE & HIRING", r.CultureItems(), rendering.NoCultureText)

	var sb strings.Builder
	if len(r.InterviewQuestions) == 0 {
		sb.WriteString(rendering.NoQuestionsText)
	}
	count := p.limit(len(r.InterviewQuestions))
	for _, q := range r.InterviewQuestions[:count] {
		fmt.Fprintf(&sb, "• %s\n  %s\n", q.Source, q.Link)
	}
	p.more(&sb, len(r.InterviewQuestions), count, "sources")
	p.printBox("INTERVIEW QUESTIONS", strings.TrimSuffix(sb.String(), "\n"))
	return nil
}

func (p *Printer) printItems(title string, items []types.InfoItem, empty string) {
	var sb strings.Builder
	if len(items) == 0 {
		sb.WriteString(empty)
	}
	count := p.limit(len(items))
	for _, it := range items[:count] {
		fmt.Fprintf(&sb, "• %s\n", it.Title)
		if it.Snippet != "" {
			fmt.Fprintf(&sb, "  %s\n", it.Snippet)
		}
	}
	p.more(&sb, len(items), count, "items")
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintStats outputs the dashboard counters.
func (p *Printer) PrintStats(s state.Stats) {
	p.printBox("STATS", fmt.Sprintf(
		"Skills: %d   Jobs: %d   Companies: %d   Courses: %d",
		s.Skills, s.Jobs, s.CompaniesResearched, s.CoursesFound,
	))
}
