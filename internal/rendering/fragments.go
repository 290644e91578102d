package rendering

import (
	"html/template"
	"strings"
	texttemplate "text/template"

	"github.com/jonathan/job-assistant/internal/markdown"
	"github.com/jonathan/job-assistant/internal/state"
	"github.com/jonathan/job-assistant/internal/types"
)

// Fragment targets. Each names the page element whose content a fragment replaces.
const (
	TargetSkillTags   = "skillTags"
	TargetJobs        = "jobsContainer"
	TargetMatched     = "matchedSkillsList"
	TargetMissing     = "missingSkillsList"
	TargetCourses     = "coursesContainer"
	TargetBrief       = "briefContent"
	TargetNews        = "news"
	TargetCulture     = "culture"
	TargetQuestions   = "questions"
	TargetCoverLetter = "coverLetterModal"
)

// Placeholder texts for empty areas
const (
	NoSkillGapsText = "Great! No skill gaps found."
	NoNewsText      = "No recent news found."
	NoCultureText   = "No culture information found."
	NoQuestionsText = "No interview questions found."
)

// Fragment is rendered HTML for one page target.
type Fragment struct {
	Target string        `json:"target"`
	HTML   template.HTML `json:"html"`
}

// Fragments are assembled with text/template and explicit escaping: backend
// strings go through esc, links through url, and only the Markdown brief is
// inserted raw.
var fragmentTemplates = texttemplate.Must(texttemplate.New("fragments").Funcs(texttemplate.FuncMap{
	"esc": EscapeHTML,
	"url": func(s string) string { return EscapeHTML(SafeURL(s)) },
}).Parse(fragmentSource))

const fragmentSource = `
{{define "skillTags"}}{{range .}}<span class="skill-tag">{{esc .}}</span>{{end}}{{end}}

{{define "jobs"}}{{if not .}}<div class="empty-state">
  <i class="fas fa-briefcase"></i>
  <h3>No Jobs Found</h3>
  <p>Try adjusting your search criteria</p>
  <form method="post" action="/ui/nav/home"><button class="btn btn-primary"><i class="fas fa-search"></i> Search Again</button></form>
</div>{{else}}{{range $i, $job := .}}<div class="job-card">
  <div class="job-header">
    <div class="job-info">
      <h3>{{esc $job.Title}}</h3>
      <div class="job-company"><i class="fas fa-building"></i> <span>{{esc $job.Company}}</span></div>
      <div class="job-location"><i class="fas fa-map-marker-alt"></i> <span>{{esc $job.Location}}</span></div>
    </div>
    <div class="job-actions" data-job-index="{{$i}}">
      <a href="{{url $job.Link}}" target="_blank" rel="noopener" class="btn btn-primary"><i class="fas fa-external-link-alt"></i> View Job</a>
      <form method="post" action="/ui/jobs/{{$i}}/cover-letter"><button class="btn btn-secondary"><i class="fas fa-file-alt"></i> Cover Letter</button></form>
      <form method="post" action="/ui/jobs/{{$i}}/research"><button class="btn btn-secondary"><i class="fas fa-search"></i> Research</button></form>
    </div>
  </div>
  <div class="job-description">{{esc $job.Description}}</div>
</div>
{{end}}{{end}}{{end}}

{{define "matched"}}{{range .}}<div class="skill-item"><i class="fas fa-check-circle"></i> <span>{{esc .}}</span></div>
{{end}}{{end}}

{{define "missing"}}{{if .}}{{range .}}<div class="skill-item"><i class="fas fa-exclamation-triangle"></i> <span>{{esc .}}</span></div>
{{end}}{{else}}<p class="placeholder success">` + NoSkillGapsText + `</p>{{end}}{{end}}

{{define "courses"}}{{range .}}<div class="course-section">
  <h3><i class="fas fa-graduation-cap"></i> Learn {{esc .Skill}}</h3>
  <div class="course-grid">
{{range .YouTube}}    <div class="course-item">
      <div class="course-info"><i class="fab fa-youtube"></i><div><div>{{esc .Title}}</div><span class="course-platform">{{esc .Platform}}</span></div></div>
      <a href="{{url .URL}}" target="_blank" rel="noopener" class="btn btn-secondary"><i class="fas fa-external-link-alt"></i> Watch</a>
    </div>
{{end}}{{range .Curated}}    <div class="course-item">
      <div class="course-info"><i class="fas fa-book"></i><div><div>{{esc .Title}}</div><span class="course-platform">{{esc .Platform}}</span></div></div>
      <a href="{{url .URL}}" target="_blank" rel="noopener" class="btn btn-secondary"><i class="fas fa-external-link-alt"></i> Enroll</a>
    </div>
{{end}}  </div>
</div>
{{end}}{{end}}

{{define "infoItems"}}{{if .Items}}{{range .Items}}<div class="info-item">
  <h4><a href="{{url .Link}}" target="_blank" rel="noopener">{{esc .Title}}</a></h4>
  <p>{{esc .Snippet}}</p>
</div>
{{end}}{{else}}<p class="placeholder">{{.Empty}}</p>{{end}}{{end}}

{{define "questions"}}{{if .}}{{range .}}<div class="info-item">
  <h4><a href="{{url .Link}}" target="_blank" rel="noopener">{{esc .Source}}</a></h4>
  <p>{{esc .Snippet}}</p>
</div>
{{end}}{{else}}<p class="placeholder">` + NoQuestionsText + `</p>{{end}}{{end}}

{{define "coverLetter"}}<div class="modal active" id="coverLetterModal">
  <div class="modal-content">
    <form method="post" action="/ui/modal/close"><button class="modal-close" aria-label="Close">&times;</button></form>
    <h2>Cover Letter for {{esc .Company}}</h2>
    <textarea id="coverLetterText" readonly>{{esc .Text}}</textarea>
    <div class="modal-actions">
      <button type="button" id="copyCoverLetter" class="btn btn-secondary" data-copy-target="coverLetterText"><i class="fas fa-copy"></i> Copy</button>
      <a id="downloadCoverLetter" class="btn btn-primary" href="/ui/cover-letter/download" download="{{esc .Filename}}"><i class="fas fa-download"></i> Download</a>
    </div>
  </div>
</div>{{end}}
`

type infoItemsData struct {
	Items []types.InfoItem
	Empty string
}

// Renderer renders fragments. The Markdown renderer is used for briefs.
type Renderer struct {
	markdown *markdown.Renderer
}

// New creates a renderer. A nil Markdown renderer uses the default options.
func New(md *markdown.Renderer) *Renderer {
	if md == nil {
		md = markdown.New(markdown.Options{})
	}
	return &Renderer{markdown: md}
}

func execute(target, name string, data any) (Fragment, error) {
	var sb strings.Builder
	if err := fragmentTemplates.ExecuteTemplate(&sb, name, data); err != nil {
		return Fragment{Target: target}, &RenderError{Fragment: name, Cause: err}
	}
	//nolint:gosec // every dynamic value in fragment templates is escaped via esc/url
	return Fragment{Target: target, HTML: template.HTML(sb.String())}, nil
}

// SkillTags renders the resume skill tags.
func (r *Renderer) SkillTags(skills []string) (Fragment, error) {
	return execute(TargetSkillTags, "skillTags", skills)
}

// Jobs renders one card per job, or the empty placeholder.
func (r *Renderer) Jobs(jobs []types.Job) (Fragment, error) {
	return execute(TargetJobs, "jobs", jobs)
}

// SkillAnalysis renders the matched and missing skill lists.
func (r *Renderer) SkillAnalysis(a types.SkillAnalysis) ([]Fragment, error) {
	matched, err := execute(TargetMatched, "matched", a.MatchedSkills)
	if err != nil {
		return nil, err
	}
	missing, err := execute(TargetMissing, "missing", a.MissingSkills)
	if err != nil {
		return nil, err
	}
	return []Fragment{matched, missing}, nil
}

// Courses renders one section per course set.
func (r *Renderer) Courses(sets []types.CourseSet) (Fragment, error) {
	return execute(TargetCourses, "courses", sets)
}

// Research renders the brief, news, culture and interview question areas.
func (r *Renderer) Research(res types.Research) ([]Fragment, error) {
	brief := Fragment{Target: TargetBrief, HTML: r.markdown.Render(res.AIBrief)}

	news, err := execute(TargetNews, "infoItems", infoItemsData{Items: res.CompanyInfo.News, Empty: NoNewsText})
	if err != nil {
		return nil, err
	}
	culture, err := execute(TargetCulture, "infoItems", infoItemsData{Items: res.CultureItems(), Empty: NoCultureText})
	if err != nil {
		return nil, err
	}
	questions, err := execute(TargetQuestions, "questions", res.InterviewQuestions)
	if err != nil {
		return nil, err
	}
	return []Fragment{brief, news, culture, questions}, nil
}

// CoverLetter renders the letter modal.
func (r *Renderer) CoverLetter(letter state.CoverLetter) (Fragment, error) {
	return execute(TargetCoverLetter, "coverLetter", struct {
		state.CoverLetter
		Filename string
	}{letter, CoverLetterFilename(letter.Company)})
}
