package observability

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/state"
	"github.com/jonathan/job-assistant/internal/types"
)

func TestPrintUpload(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintUpload(types.UploadResult{Filename: "cv.pdf", Skills: []string{"Go", "SQL"}}, 2048)
	output := buf.String()

	assert.Contains(t, output, "RESUME ANALYZED")
	assert.Contains(t, output, "cv.pdf (2.0 kB)")
	assert.Contains(t, output, "2 found")
	assert.Contains(t, output, "Go, SQL")
}

func TestPrintJobs(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	var jobs []types.Job
	for i := 0; i < 7; i++ {
		jobs = append(jobs, types.Job{Title: fmt.Sprintf("Engineer %d", i), Company: "Acme", Location: "Berlin"})
	}

	p.PrintJobs(jobs)
	output := buf.String()

	assert.Contains(t, output, "JOB MATCHES")
	assert.Contains(t, output, "Found 7 jobs")
	assert.Contains(t, output, "[0] Engineer 0")
	assert.Contains(t, output, "[4] Engineer 4")
	assert.NotContains(t, output, "Engineer 5")
	assert.Contains(t, output, "... and 2 more jobs")
}

func TestPrintJobs_ShowAll(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.MaxItems = -1

	jobs := make([]types.Job, 7)
	jobs[6] = types.Job{Title: "Last"}
	p.PrintJobs(jobs)

	assert.Contains(t, buf.String(), "[6] Last")
	assert.NotContains(t, buf.String(), "more jobs")
}

func TestPrintJobs_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintJobs(nil)
	assert.Contains(t, buf.String(), "No jobs found")
}

func TestPrintSkillAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		analysis types.SkillAnalysis
		contains []string
	}{
		{
			name:     "gaps",
			analysis: types.SkillAnalysis{MatchedSkills: []string{"Go"}, MissingSkills: []string{"Rust"}},
			contains: []string{"✓ Go", "✗ Rust"},
		},
		{
			name:     "no gaps",
			analysis: types.SkillAnalysis{MatchedSkills: []string{"Go"}},
			contains: []string{"✓ Go", "No skill gaps found"},
		},
		{
			name:     "nothing matched",
			analysis: types.SkillAnalysis{MissingSkills: []string{"Rust"}},
			contains: []string{"(none)", "✗ Rust"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintSkillAnalysis(tt.analysis)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrintCourses(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCourses([]types.CourseSet{{
		Skill:   "Kubernetes",
		YouTube: []types.Course{{Title: "K8s in 1 hour", Platform: "YouTube", URL: "https://youtube.com/k"}},
		Curated: []types.Course{{Title: "CKA prep", Platform: "Udemy", URL: "https://udemy.com/cka"}},
	}})
	output := buf.String()

	assert.Contains(t, output, "Learn Kubernetes")
	assert.Less(t, strings.Index(output, "K8s in 1 hour"), strings.Index(output, "CKA prep"))
}

func TestPrintCourses_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCourses(nil)
	assert.Empty(t, buf.String())
}

func TestPrintResearch(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	err := p.PrintResearch(types.Research{
		CompanyName: "Acme",
		AIBrief:     "## Overview\nAcme builds **rockets**.",
		CompanyInfo: types.CompanyInfo{
			News:   []types.InfoItem{{Title: "Acme raises funds", Snippet: "Series B"}},
			Hiring: []types.InfoItem{{Title: "Acme is hiring"}},
		},
	}, nil)
	require.NoError(t, err)
	output := buf.String()

	assert.Contains(t, output, "INTERVIEW BRIEF: Acme")
	assert.Contains(t, output, "Acme builds rockets.")
	assert.NotContains(t, output, "**")
	assert.Contains(t, output, "Acme raises funds")
	assert.Contains(t, output, "Acme is hiring")
	assert.Contains(t, output, "No interview questions found")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 200))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "line %q", line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStats(state.Stats{Skills: 3, Jobs: 8, CompaniesResearched: 1, CoursesFound: 2})
	assert.Contains(t, buf.String(), "Skills: 3   Jobs: 8   Companies: 1   Courses: 2")
}
