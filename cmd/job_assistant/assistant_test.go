package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/flows"
)

const samplePDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

// backendStub imitates the backend API's JSON envelopes.
type backendStub struct {
	mu       sync.Mutex
	hits     map[string]int
	partType string
	// searchError makes /search-jobs fail with this message.
	searchError string
	// noCourses makes /get-courses fail.
	noCourses bool
}

func (b *backendStub) hit(path string) {
	b.mu.Lock()
	b.hits[path]++
	b.mu.Unlock()
}

func (b *backendStub) count(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newBackendStub(t *testing.T) (*backendStub, *httptest.Server) {
	t.Helper()
	b := &backendStub{hits: make(map[string]int)}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /upload-resume", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r.URL.Path)
		file, header, err := r.FormFile("resume")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "No file uploaded"})
			return
		}
		defer file.Close()
		b.mu.Lock()
		b.partType = header.Header.Get("Content-Type")
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true, "session_id": "abc123", "filename": header.Filename,
			"skills": []string{"Go", "SQL", "Docker"},
		})
	})
	mux.HandleFunc("POST /search-jobs", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r.URL.Path)
		if b.searchError != "" {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": b.searchError})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "jobs": []map[string]string{
			{"title": "Backend Engineer", "company": "Acme", "location": "Berlin", "description": "Go services", "link": "https://jobs.example.com/1"},
			{"title": "Platform Engineer", "company": "Globex Inc.", "location": "Remote", "description": "Kubernetes", "link": "https://jobs.example.com/2"},
		}})
	})
	mux.HandleFunc("POST /generate-cover-letter", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r.URL.Path)
		var req struct {
			Job struct {
				Company string `json:"company"`
			} `json:"job"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "cover_letter": "Dear " + req.Job.Company + " team"})
	})
	mux.HandleFunc("POST /analyze-skills", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "analysis": map[string]any{
			"matched_skills": []string{"Go"}, "missing_skills": []string{"Kubernetes"},
		}})
	})
	mux.HandleFunc("POST /get-courses", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r.URL.Path)
		if b.noCourses {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "quota exceeded"})
			return
		}
		var req struct {
			Skills []string `json:"skills"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		var courses []map[string]any
		for _, s := range req.Skills {
			courses = append(courses, map[string]any{
				"skill":   s,
				"youtube": []map[string]string{{"title": s + " in 100 seconds", "platform": "YouTube", "url": "https://youtube.com/watch?v=x"}},
				"curated": []map[string]string{},
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "courses": courses})
	})
	mux.HandleFunc("POST /research-company", func(w http.ResponseWriter, r *http.Request) {
		b.hit(r.URL.Path)
		var req struct {
			CompanyName string `json:"company_name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "research": map[string]any{
			"company_name": req.CompanyName,
			"ai_brief":     "## Overview\n" + req.CompanyName + " ships **rockets**.",
			"company_info": map[string]any{
				"news":    []map[string]string{{"title": req.CompanyName + " raises Series C", "link": "https://news.example.com", "snippet": "Big round"}},
				"culture": []map[string]string{},
				"hiring":  []map[string]string{},
			},
			"interview_questions": []map[string]string{},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func newTestAssistant(t *testing.T, backendURL string) (*assistant, *bytes.Buffer) {
	t.Helper()
	cfg := cliDefaults()
	cfg.Backend.URL = backendURL
	cfg.Logging.Level = "error"

	var out bytes.Buffer
	a, err := newAssistant(context.Background(), &cfg, &out)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, &out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_FullFlow(t *testing.T) {
	stub, srv := newBackendStub(t)
	a, out := newTestAssistant(t, srv.URL)
	outDir := filepath.Join(t.TempDir(), "out")

	err := a.run(context.Background(), out, runOptions{
		Resume:         writeFile(t, "cv.pdf", samplePDF),
		Location:       "Berlin",
		Limit:          flows.DefaultLimit,
		CoverLetters:   []int{1},
		ResearchJob:    0,
		JobDescription: writeFile(t, "job.txt", "We run Kubernetes and Go"),
		Out:            outDir,
	})
	require.NoError(t, err)
	output := out.String()

	assert.Equal(t, flows.PDFType, stub.partType)
	assert.Contains(t, output, "RESUME ANALYZED")
	assert.Contains(t, output, "Go, SQL, Docker")
	assert.Contains(t, output, "[1] Platform Engineer")
	assert.Contains(t, output, "INTERVIEW BRIEF: Acme")
	assert.Contains(t, output, "Acme ships rockets.")
	assert.Contains(t, output, "✗ Kubernetes")
	assert.Contains(t, output, "Learn Kubernetes")
	assert.Contains(t, output, "Skills: 3   Jobs: 2   Companies: 1   Courses: 1")

	letter, err := os.ReadFile(filepath.Join(outDir, "cover_letter_Globex_Inc_.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Dear Globex Inc. team", string(letter))

	brief, err := os.ReadFile(filepath.Join(outDir, "interview_brief_Acme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "## Overview\nAcme ships **rockets**.", string(brief))
}

func TestRun_RejectsNonPDF(t *testing.T) {
	stub, srv := newBackendStub(t)
	a, out := newTestAssistant(t, srv.URL)

	err := a.run(context.Background(), out, runOptions{
		Resume: writeFile(t, "cv.txt", "plain text resume"),
		Limit:  flows.DefaultLimit,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), flows.MsgPDFOnly)
	assert.Contains(t, err.Error(), "text/plain")
	assert.Zero(t, stub.count("/upload-resume"))
}

func TestRun_InvalidJobIndex(t *testing.T) {
	stub, srv := newBackendStub(t)
	a, out := newTestAssistant(t, srv.URL)

	err := a.run(context.Background(), out, runOptions{
		Resume:       writeFile(t, "cv.pdf", samplePDF),
		Limit:        flows.DefaultLimit,
		CoverLetters: []int{5},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), flows.MsgInvalidJob)
	assert.Zero(t, stub.count("/generate-cover-letter"))
}

func TestRun_InvalidLimit(t *testing.T) {
	stub, srv := newBackendStub(t)
	a, out := newTestAssistant(t, srv.URL)

	err := a.run(context.Background(), out, runOptions{
		Resume: writeFile(t, "cv.pdf", samplePDF),
		Limit:  51,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), flows.MsgInvalidLimit)
	assert.Zero(t, stub.count("/search-jobs"))
}

func TestRun_BackendMessageShown(t *testing.T) {
	stub, srv := newBackendStub(t)
	stub.searchError = "Job search API key missing"
	a, out := newTestAssistant(t, srv.URL)

	err := a.run(context.Background(), out, runOptions{
		Resume: writeFile(t, "cv.pdf", samplePDF),
		Limit:  flows.DefaultLimit,
	})

	require.Error(t, err)
	assert.Equal(t, "job search: Job search API key missing", err.Error())
}

func TestRun_BackendDown(t *testing.T) {
	_, srv := newBackendStub(t)
	srv.Close()
	a, out := newTestAssistant(t, srv.URL)

	err := a.run(context.Background(), out, runOptions{
		Resume: writeFile(t, "cv.pdf", samplePDF),
		Limit:  flows.DefaultLimit,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), flows.MsgNetworkError)
}

func TestResearch_SavesBrief(t *testing.T) {
	_, srv := newBackendStub(t)
	a, out := newTestAssistant(t, srv.URL)
	dir := t.TempDir()

	err := a.research(context.Background(), out, flows.ResearchInput{CompanyName: "Initech", JobTitle: "SRE"}, dir)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Initech raises Series C")
	assert.Contains(t, out.String(), "No culture information found")
	assert.FileExists(t, filepath.Join(dir, "interview_brief_Initech.txt"))
}

func TestResearch_MissingInput(t *testing.T) {
	stub, srv := newBackendStub(t)
	a, out := newTestAssistant(t, srv.URL)

	err := a.research(context.Background(), out, flows.ResearchInput{CompanyName: "Initech", JobTitle: "  "}, t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), flows.MsgResearchInputs)
	assert.Zero(t, stub.count("/research-company"))
}

func TestCourses(t *testing.T) {
	_, srv := newBackendStub(t)
	a, out := newTestAssistant(t, srv.URL)

	require.NoError(t, a.courses(context.Background(), out, []string{"Rust", "Terraform"}))

	assert.Contains(t, out.String(), "Learn Rust")
	assert.Contains(t, out.String(), "Terraform in 100 seconds")
}

func TestCourses_FailureIsQuiet(t *testing.T) {
	stub, srv := newBackendStub(t)
	stub.noCourses = true
	a, out := newTestAssistant(t, srv.URL)

	require.NoError(t, a.courses(context.Background(), out, []string{"Rust"}))

	assert.Equal(t, "No courses found.\n", out.String())
}

func TestCliConfig_FileEnvAndFlags(t *testing.T) {
	path := writeFile(t, "config.yaml", "backend:\n  url: http://file.example:5000\n  retries: 2\nlogging:\n  level: debug\n")
	oldPath := configPath
	configPath = path
	t.Cleanup(func() { configPath = oldPath })
	t.Setenv("BACKEND_TIMEOUT", "45s")

	cfg, err := cliConfig(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, "http://file.example:5000", cfg.Backend.URL)
	assert.Equal(t, 2, cfg.Backend.Retries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 45*time.Second, cfg.Backend.Timeout.Std())
	assert.Equal(t, config.Defaults().Server.Port, cfg.Server.Port, "unset values come from the defaults")

	cmd := &cobra.Command{}
	cmd.Flags().StringVar(&backendURL, "backend-url", "", "")
	require.NoError(t, cmd.Flags().Set("backend-url", "http://flag.example"))
	cfg, err = cliConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example", cfg.Backend.URL)
}

func TestCliConfig_QuietByDefault(t *testing.T) {
	oldPath := configPath
	configPath = ""
	t.Cleanup(func() { configPath = oldPath })
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := cliConfig(&cobra.Command{})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestServeConfig_PortFlag(t *testing.T) {
	oldPath := configPath
	configPath = ""
	t.Cleanup(func() { configPath = oldPath })

	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&servePort, "port", 8080, "")
	require.NoError(t, cmd.Flags().Set("port", "9191"))

	cfg, err := serveConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, ":9191", cfg.Server.Addr())
}

func TestHashPassword(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("correct horse\n"))
	cmd.SetOut(&out)

	require.NoError(t, runHashPassword(cmd, nil))

	passwords, err := config.NewPasswordConfig()
	require.NoError(t, err)
	hash := strings.TrimSpace(out.String())
	assert.True(t, passwords.VerifyPassword("correct horse", hash))
	assert.False(t, passwords.VerifyPassword("wrong horse", hash))
}

func TestHashPassword_Empty(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("\n"))

	err := runHashPassword(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestPrintFlowRuns(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := "Found 8 jobs!"
	var out bytes.Buffer

	printFlowRuns(&out, []db.FlowRun{
		{Flow: "search", Outcome: "ok", DurationMs: 1250, StartedAt: now.Add(-3 * time.Minute), Message: &msg},
		{Flow: "courses", Outcome: "transport_error", DurationMs: 30, StartedAt: now.Add(-2 * time.Hour)},
	}, now)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "search")
	assert.Contains(t, lines[0], "3 minutes ago")
	assert.Contains(t, lines[0], msg)
	assert.Contains(t, lines[1], "transport_error")
	assert.Contains(t, lines[1], "2 hours ago")
}

func TestPrintFlowRun(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := "Network error. Please try again."
	cause := "POST /search-jobs: connection refused"
	run := db.FlowRun{
		ID:         uuid.MustParse("6f1c2a9e-3b7d-4c55-9a41-2d8e0f6b7c13"),
		VisitorID:  "visitor-1",
		Flow:       "search",
		Outcome:    "transport_error",
		Message:    &msg,
		Error:      &cause,
		DurationMs: 42,
		StartedAt:  now.Add(-time.Hour),
	}
	var out bytes.Buffer

	printFlowRun(&out, run, now)

	assert.Contains(t, out.String(), "Run:      6f1c2a9e-3b7d-4c55-9a41-2d8e0f6b7c13")
	assert.Contains(t, out.String(), "Flow:     search (transport_error)")
	assert.Contains(t, out.String(), "2026-03-01T11:00:00Z (1 hour ago)")
	assert.Contains(t, out.String(), "Error:    "+cause)

	run.Message, run.Error = nil, nil
	out.Reset()
	printFlowRun(&out, run, now)
	assert.NotContains(t, out.String(), "Message:")
	assert.NotContains(t, out.String(), "Error:")
}

func TestPrintOutcomeCounts(t *testing.T) {
	var out bytes.Buffer

	printOutcomeCounts(&out, []db.OutcomeCount{
		{Flow: "search", Outcome: "ok", Count: 1200},
		{Flow: "search", Outcome: "app_error", Count: 34},
	})

	assert.Contains(t, out.String(), "1,200")
	assert.Contains(t, out.String(), "Total: 1,234 runs")

	out.Reset()
	printOutcomeCounts(&out, nil)
	assert.Equal(t, "No flow runs recorded.\n", out.String())
}
