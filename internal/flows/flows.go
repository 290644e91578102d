// Package flows implements the job assistant's user actions.
//
// A flow reads a State snapshot, may call the backend, and returns an Outcome:
// a state.Mutation plus a View describing notices, rendered fragments and
// navigation. Flows never touch shared state; the Runner commits outcomes to a
// visitor's Session and drives the overlay, notice tray and navigator.
package flows

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/nav"
	"github.com/jonathan/job-assistant/internal/rendering"
	"github.com/jonathan/job-assistant/internal/state"
	"github.com/jonathan/job-assistant/internal/types"
)

// Flow names, used in logs, metrics and the run log.
const (
	FlowUpload       = "upload"
	FlowRemoveResume = "remove_resume"
	FlowSearch       = "search"
	FlowCoverLetter  = "cover_letter"
	FlowCloseModal   = "close_modal"
	FlowSkillGap     = "skill_gap"
	FlowCourses      = "courses"
	FlowResearch     = "research"
	FlowNavigate     = "navigate"
)

// Notice texts
const (
	MsgNetworkError      = "Network error. Please try again."
	MsgPDFOnly           = "Please upload a PDF file"
	MsgUploaded          = "Resume analyzed successfully!"
	MsgUploadFailed      = "Upload failed"
	MsgResumeRemoved     = "Resume removed"
	MsgUploadFirst       = "Please upload your resume first"
	MsgSearchFailed      = "Search failed"
	MsgSessionExpired    = "Session expired. Please upload resume again."
	MsgInvalidJob        = "Invalid job selection"
	MsgLetterGenerated   = "Cover letter generated!"
	MsgGenerationFailed  = "Generation failed"
	MsgPasteDescription  = "Please paste a job description"
	MsgAnalysisComplete  = "Analysis complete!"
	MsgAnalysisFailed    = "Analysis failed"
	MsgResearchInputs    = "Please enter both company name and job title"
	MsgResearchComplete  = "Research complete!"
	MsgResearchFailed    = "Research failed"
	MsgInvalidLimit      = "Please enter a job limit between 1 and 50"
	MsgDownloaded        = "Downloaded!"
	MsgNothingToDownload = "Nothing to download yet"
)

// Overlay texts
const (
	BusyUpload      = "Analyzing your resume..."
	BusySearch      = "Finding perfect jobs for you..."
	BusyCoverLetter = "Generating personalized cover letter..."
	BusySkillGap    = "Analyzing skill gaps..."
	BusyCourses     = "Finding learning resources..."
)

// BusyResearch is the overlay text while researching company.
func BusyResearch(company string) string {
	return fmt.Sprintf("Researching %s...", company)
}

// Backend is the subset of the backend API the flows use.
type Backend interface {
	UploadResume(ctx context.Context, filename, contentType string, body io.Reader) (types.UploadResult, error)
	SearchJobs(ctx context.Context, in types.SearchRequest) ([]types.Job, error)
	GenerateCoverLetter(ctx context.Context, in types.CoverLetterRequest) (string, error)
	AnalyzeSkills(ctx context.Context, in types.AnalyzeRequest) (types.SkillAnalysis, error)
	GetCourses(ctx context.Context, in types.CoursesRequest) ([]types.CourseSet, error)
	ResearchCompany(ctx context.Context, in types.ResearchRequest) (types.Research, error)
}

// View is what a flow asks the page to show.
type View struct {
	Notices   []feedback.Message   `json:"notices,omitempty"`
	Fragments []rendering.Fragment `json:"fragments,omitempty"`
	Navigate  *nav.Directive       `json:"navigate,omitempty"`
	// Stats is filled in by the Runner after commit.
	Stats *state.Stats `json:"stats,omitempty"`
}

// Fragment returns the fragment for target, if the view has one.
func (v View) Fragment(target string) (rendering.Fragment, bool) {
	for _, f := range v.Fragments {
		if f.Target == target {
			return f, true
		}
	}
	return rendering.Fragment{}, false
}

func (v *View) merge(other View) {
	v.Notices = append(v.Notices, other.Notices...)
	v.Fragments = append(v.Fragments, other.Fragments...)
	if other.Navigate != nil {
		v.Navigate = other.Navigate
	}
}

// Outcome is the result of running a flow.
type Outcome struct {
	Mutation state.Mutation
	View     View
	// FollowUp requests a course lookup once this outcome is committed.
	FollowUp *CoursesInput
	// Err is the failure behind an error notice, if any.
	Err error
}

// Env is what a flow may use while it runs.
type Env struct {
	State   state.State
	Backend Backend
	// Busy shows the overlay. The Runner hides it when the flow ends.
	Busy func(text string)
}

func (e Env) busy(text string) {
	if e.Busy != nil {
		e.Busy(text)
	}
}

// PreconditionError is a flow stopped before any backend call.
type PreconditionError struct {
	Flow    string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Flow, e.Message)
}

// ErrNothingToDownload is returned by downloads with no cached content.
var ErrNothingToDownload = errors.New("nothing to download")

func notice(text string, kind feedback.Kind) feedback.Message {
	return feedback.Message{Text: text, Kind: kind}
}

func rejected(flow, text string, navigate *nav.Directive) Outcome {
	return Outcome{
		View: View{
			Notices:  []feedback.Message{notice(text, feedback.KindError)},
			Navigate: navigate,
		},
		Err: &PreconditionError{Flow: flow, Message: text},
	}
}

func toHome() *nav.Directive {
	return &nav.Directive{Page: nav.PageHome}
}
