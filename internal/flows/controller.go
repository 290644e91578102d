package flows

import (
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-assistant/internal/backend"
	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/rendering"
)

// DefaultLimit is the job search limit used when none is given.
const DefaultLimit = 8

// Source says how a resume file was chosen.
type Source string

// Resume sources
const (
	SourceDrop   Source = "drop"
	SourcePicker Source = "picker"
)

// UploadInput is a resume file to upload.
type UploadInput struct {
	Filename string `validate:"required"`
	// DeclaredType is the MIME type the client reported for the file.
	DeclaredType string
	Source       Source    `validate:"oneof=drop picker"`
	Body         io.Reader `validate:"required"`
}

// SearchInput holds the job search form. A zero Limit means DefaultLimit.
type SearchInput struct {
	Location string
	Limit    int `validate:"min=1,max=50"`
}

// SkillGapInput is a pasted job description.
type SkillGapInput struct {
	JobDescription string `validate:"required"`
}

// CoursesInput lists the skills to find courses for.
type CoursesInput struct {
	Skills []string `validate:"min=1,dive,required"`
}

// ResearchInput names the company and role to research.
type ResearchInput struct {
	CompanyName string `validate:"required"`
	JobTitle    string `validate:"required"`
}

// Controller holds what flows share across visitors.
type Controller struct {
	render   *rendering.Renderer
	validate *validator.Validate
}

// NewController creates a controller rendering with r.
func NewController(r *rendering.Renderer) *Controller {
	if r == nil {
		r = rendering.New(nil)
	}
	return &Controller{
		render:   r,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Renderer returns the renderer used for fragments.
func (c *Controller) Renderer() *rendering.Renderer {
	return c.render
}

// failed turns a backend error into an error notice. Transport failures get
// the generic network message; application failures show the backend's
// message or fallback.
func failed(err error, fallback string) Outcome {
	text := MsgNetworkError
	if appErr, ok := backend.AsApp(err); ok {
		text = appErr.MessageOr(fallback)
	}
	return Outcome{
		View: View{Notices: []feedback.Message{notice(text, feedback.KindError)}},
		Err:  err,
	}
}

// attach adds rendered fragments to out. A render failure keeps the
// mutation and notices and is reported through Err.
func attach(out *Outcome, err error, frags ...rendering.Fragment) {
	if err != nil {
		out.Err = err
		return
	}
	out.View.Fragments = append(out.View.Fragments, frags...)
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
