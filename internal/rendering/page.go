package rendering

import (
	"html/template"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/nav"
	"github.com/jonathan/job-assistant/internal/state"
)

// PageInput is everything needed to render a visitor's page.
type PageInput struct {
	State   state.State
	Links   []nav.Link
	Active  string
	Notices []feedback.Notice
	Now     time.Time
	Busy    bool
	// BusyText is shown in the overlay while Busy is set.
	BusyText string
	// Refresh is a delayed navigation to carry out client side.
	Refresh *nav.Directive
	// SearchDefaults prefill the job search form.
	DefaultLocation string
	DefaultLimit    int
}

type noticeView struct {
	ID      string
	Text    string
	Kind    string
	Icon    string
	Exiting bool
}

type pageData struct {
	PageInput
	Notices      []noticeView
	RefreshMeta  string
	Sections     map[string]template.HTML
	HasSkills    bool
	HasJobs      bool
	HasAnalysis  bool
	HasCourses   bool
	HasResearch  bool
	Company      string
	CoverLetter  template.HTML
	BriefFile    string
	ResearchName string
}

var noticeIcons = map[feedback.Kind]string{
	feedback.KindSuccess: "fa-check-circle",
	feedback.KindError:   "fa-exclamation-circle",
	feedback.KindInfo:    "fa-info-circle",
}

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// Page renders the full document for in.
func (r *Renderer) Page(w io.Writer, in PageInput) error {
	data := pageData{
		PageInput: in,
		Sections:  make(map[string]template.HTML),
	}
	if data.Now.IsZero() {
		data.Now = time.Now()
	}

	for _, n := range in.Notices {
		if n.Phase(data.Now) == feedback.PhaseGone {
			continue
		}
		data.Notices = append(data.Notices, noticeView{
			ID:      n.ID,
			Text:    n.Text,
			Kind:    string(n.Kind),
			Icon:    noticeIcons[n.Kind],
			Exiting: n.Exiting(data.Now),
		})
	}

	if in.Refresh != nil {
		data.RefreshMeta = RefreshContent(*in.Refresh)
	}

	if err := r.pageSections(&data); err != nil {
		return err
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return &TemplateError{Name: "page", Cause: err}
	}
	return nil
}

func (r *Renderer) pageSections(data *pageData) error {
	st := data.State
	add := func(frags ...Fragment) {
		for _, f := range frags {
			data.Sections[f.Target] = f.HTML
		}
	}

	if len(st.Skills) > 0 {
		f, err := r.SkillTags(st.Skills)
		if err != nil {
			return err
		}
		add(f)
		data.HasSkills = true
	}
	if st.Searched {
		f, err := r.Jobs(st.Jobs)
		if err != nil {
			return err
		}
		add(f)
		data.HasJobs = true
	}
	if st.Analysis != nil {
		frags, err := r.SkillAnalysis(*st.Analysis)
		if err != nil {
			return err
		}
		add(frags...)
		data.HasAnalysis = true
	}
	if len(st.Courses) > 0 {
		f, err := r.Courses(st.Courses)
		if err != nil {
			return err
		}
		add(f)
		data.HasCourses = true
	}
	if st.Research != nil {
		frags, err := r.Research(*st.Research)
		if err != nil {
			return err
		}
		add(frags...)
		data.HasResearch = true
		data.ResearchName = st.Research.CompanyName
		data.BriefFile = BriefFilename(st.Research.CompanyName)
	}
	if st.CoverLetter != nil && st.CoverLetter.Open {
		f, err := r.CoverLetter(*st.CoverLetter)
		if err != nil {
			return err
		}
		data.CoverLetter = f.HTML
	}
	return nil
}

// RefreshContent formats d as a meta refresh value, e.g. "0.5;url=/?page=jobs".
func RefreshContent(d nav.Directive) string {
	secs := strconv.FormatFloat(d.Delay.Seconds(), 'f', -1, 64)
	return secs + ";url=/?page=" + url.QueryEscape(d.Page)
}

const pageSource = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
{{- if .RefreshMeta}}
<meta http-equiv="refresh" content="{{.RefreshMeta}}">
{{- end}}
<title>AI Job Assistant</title>
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.4.0/css/all.min.css">
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
<nav class="navbar">
  <div class="nav-brand"><i class="fas fa-robot"></i> AI Job Assistant</div>
  <ul class="nav-menu">
  {{- range .Links}}
    <li><form method="post" action="/ui/nav/{{.ID}}"><button class="nav-link{{if .Active}} active{{end}}" data-page="{{.ID}}">{{.Label}}</button></form></li>
  {{- end}}
  </ul>
</nav>

<main>
<section id="home" class="page{{if eq .Active "home"}} active{{end}}">
  <div class="stats">
    <div class="stat"><span id="skillCount">{{.State.Stats.Skills}}</span> Skills</div>
    <div class="stat"><span id="jobCount">{{.State.Stats.Jobs}}</span> Jobs</div>
    <div class="stat"><span id="companyCount">{{.State.Stats.CompaniesResearched}}</span> Companies</div>
    <div class="stat"><span id="courseCount">{{.State.Stats.CoursesFound}}</span> Courses</div>
  </div>

  <div class="upload-section">
  {{- if .State.HasSession}}
    <div id="fileInfo" class="file-info">
      <i class="fas fa-file-pdf"></i> <span id="fileName">{{.State.ResumeFilename}}</span>
      <form method="post" action="/ui/resume/remove"><button id="removeFile" class="btn-icon" aria-label="Remove"><i class="fas fa-times"></i></button></form>
    </div>
    {{- if .HasSkills}}
    <div id="skillsPreview" class="skills-preview">
      <h3>Detected Skills</h3>
      <div id="skillTags">{{index .Sections "skillTags"}}</div>
    </div>
    {{- end}}
  {{- else}}
    <form id="uploadArea" class="upload-area" method="post" action="/ui/resume" enctype="multipart/form-data">
      <i class="fas fa-cloud-upload-alt"></i>
      <h3>Upload your resume</h3>
      <input type="hidden" name="source" value="picker">
      <input type="file" id="fileInput" name="resume" accept=".pdf">
      <button class="btn btn-primary">Upload</button>
    </form>
  {{- end}}
  </div>

  <form class="search-form" method="post" action="/ui/jobs/search">
    <input id="location" name="location" type="text" placeholder="Location" value="{{.DefaultLocation}}">
    <input id="limit" name="limit" type="number" min="1" max="50" value="{{.DefaultLimit}}">
    <button id="searchJobsBtn" class="btn btn-primary"><i class="fas fa-search"></i> Search Jobs</button>
  </form>
</section>

<section id="jobs" class="page{{if eq .Active "jobs"}} active{{end}}">
  <h2>Job Matches</h2>
  <div id="jobsContainer">{{if .HasJobs}}{{index .Sections "jobsContainer"}}{{end}}</div>
</section>

<section id="skills" class="page{{if eq .Active "skills"}} active{{end}}">
  <h2>Skill Gap Analysis</h2>
  <form method="post" action="/ui/skills/analyze">
    <textarea id="jobDescription" name="job_description" placeholder="Paste a job description"></textarea>
    <button id="analyzeSkillsBtn" class="btn btn-primary"><i class="fas fa-chart-bar"></i> Analyze</button>
  </form>
  <div id="skillsResults" class="results{{if not .HasAnalysis}} hidden{{end}}">
    <div class="skills-column"><h3>Matched Skills</h3><div id="matchedSkillsList">{{index .Sections "matchedSkillsList"}}</div></div>
    <div class="skills-column"><h3>Missing Skills</h3><div id="missingSkillsList">{{index .Sections "missingSkillsList"}}</div></div>
  </div>
  <div id="coursesSection" class="{{if not .HasCourses}}hidden{{end}}">
    <h2>Learning Resources</h2>
    <div id="coursesContainer">{{index .Sections "coursesContainer"}}</div>
  </div>
</section>

<section id="research" class="page{{if eq .Active "research"}} active{{end}}">
  <h2>Company Research</h2>
  <form method="post" action="/ui/research">
    <input id="companyName" name="company_name" type="text" placeholder="Company name" value="{{.ResearchName}}">
    <input id="jobTitle" name="job_title" type="text" placeholder="Job title">
    <button id="researchBtn" class="btn btn-primary"><i class="fas fa-search"></i> Research</button>
  </form>
  <div id="researchResults" class="results{{if not .HasResearch}} hidden{{end}}">
    <div class="research-card">
      <h3><i class="fas fa-brain"></i> Interview Brief</h3>
      <div id="briefContent" class="brief">{{index .Sections "briefContent"}}</div>
      {{- if .HasResearch}}
      <a id="downloadBrief" class="btn btn-secondary" href="/ui/research/brief/download" download="{{.BriefFile}}"><i class="fas fa-download"></i> Download Brief</a>
      {{- end}}
    </div>
    <div class="research-card"><h3><i class="fas fa-newspaper"></i> Recent News</h3><div id="news">{{index .Sections "news"}}</div></div>
    <div class="research-card"><h3><i class="fas fa-users"></i> Culture &amp; Hiring</h3><div id="culture">{{index .Sections "culture"}}</div></div>
    <div class="research-card"><h3><i class="fas fa-question-circle"></i> Interview Questions</h3><div id="questions">{{index .Sections "questions"}}</div></div>
  </div>
</section>
</main>

{{.CoverLetter}}

<div id="loadingOverlay" class="loading-overlay{{if .Busy}} active{{end}}">
  <div class="spinner"></div>
  <p id="loadingText">{{.BusyText}}</p>
</div>

<div id="toastContainer" class="toast-container">
{{- range .Notices}}
  <div class="toast toast-{{.Kind}}{{if .Exiting}} toast-exit{{end}}" id="toast-{{.ID}}">
    <i class="fas {{.Icon}}"></i>
    <span>{{.Text}}</span>
    <form method="post" action="/ui/notices/{{.ID}}/dismiss"><button class="toast-close" aria-label="Dismiss">&times;</button></form>
  </div>
{{- end}}
</div>
</body>
</html>
`
