package flows

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-assistant/internal/backend"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/nav"
	"github.com/jonathan/job-assistant/internal/state"
)

// Run outcomes, as reported to observers and the run log.
const (
	OutcomeOK             = "ok"
	OutcomePrecondition   = "precondition"
	OutcomeAppError       = "app_error"
	OutcomeTransportError = "transport_error"
	OutcomeRenderError    = "render_error"
)

// Session is everything one visitor owns.
type Session struct {
	VisitorID string
	Store     *state.Store
	Nav       *nav.Navigator
	Tray      *feedback.Tray
	Overlay   *feedback.Overlay
	Backend   Backend
}

// NewSession creates a visitor session talking to api.
func NewSession(visitorID string, api Backend) *Session {
	return &Session{
		VisitorID: visitorID,
		Store:     state.NewStore(),
		Nav:       nav.New(),
		Tray:      feedback.NewTray(),
		Overlay:   &feedback.Overlay{},
		Backend:   api,
	}
}

// Observer is told about every finished flow.
type Observer interface {
	FlowFinished(flow, outcome string, elapsed time.Duration)
}

// Recorder persists finished flows.
type Recorder interface {
	RecordFlowRun(ctx context.Context, input *db.FlowRunInput) (*db.FlowRun, error)
}

// Event is one step of a streamed flow.
type Event struct {
	// Type is "busy" when the overlay changes and "view" after a commit.
	Type string `json:"type"`
	Flow string `json:"flow"`
	Text string `json:"text,omitempty"`
	View *View  `json:"view,omitempty"`
}

// Event types
const (
	EventBusy = "busy"
	EventView = "view"
)

// FlowFunc runs one flow against env.
type FlowFunc func(ctx context.Context, env Env) Outcome

// Runner executes flows against sessions and commits their outcomes.
type Runner struct {
	controller *Controller
	logger     *zap.Logger
	observer   Observer
	recorder   Recorder
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithObserver reports finished flows to o.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) { r.observer = o }
}

// WithRecorder stores finished flows with rec.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// NewRunner creates a runner for c's flows.
func NewRunner(c *Controller, logger *zap.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{controller: c, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Controller returns the runner's controller.
func (r *Runner) Controller() *Controller {
	return r.controller
}

// Run executes fn for sess, commits its outcome and carries out any follow-up.
func (r *Runner) Run(ctx context.Context, sess *Session, flow string, fn FlowFunc) View {
	return r.run(ctx, sess, flow, fn, nil)
}

// Stream is Run with emit called for every overlay change and commit.
func (r *Runner) Stream(ctx context.Context, sess *Session, flow string, fn FlowFunc, emit func(Event)) View {
	return r.run(ctx, sess, flow, fn, emit)
}

func (r *Runner) run(ctx context.Context, sess *Session, flow string, fn FlowFunc, emit func(Event)) View {
	start := time.Now()
	defer sess.Overlay.Hide()

	env := Env{
		State:   sess.Store.Snapshot(),
		Backend: sess.Backend,
		Busy: func(text string) {
			sess.Overlay.Show(text)
			if emit != nil {
				_, shown := sess.Overlay.State()
				emit(Event{Type: EventBusy, Flow: flow, Text: shown})
			}
		},
	}

	out := fn(ctx, env)
	view := r.commit(sess, out)
	r.finish(ctx, sess, flow, out, start)
	if emit != nil {
		v := view
		emit(Event{Type: EventView, Flow: flow, View: &v})
	}

	if out.FollowUp != nil {
		follow := *out.FollowUp
		next := r.run(ctx, sess, FlowCourses, func(ctx context.Context, env Env) Outcome {
			return r.controller.Courses(ctx, env, follow)
		}, emit)
		view.merge(next)
		view.Stats = next.Stats
	}
	return view
}

// commit applies out to the session and returns the view with current stats.
func (r *Runner) commit(sess *Session, out Outcome) View {
	st := sess.Store.Apply(out.Mutation)
	sess.Tray.Push(out.View.Notices...)
	if out.View.Navigate != nil {
		sess.Nav.Apply(*out.View.Navigate)
	}

	view := out.View
	stats := st.Stats
	view.Stats = &stats
	return view
}

func (r *Runner) finish(ctx context.Context, sess *Session, flow string, out Outcome, start time.Time) {
	elapsed := time.Since(start)
	outcome := Classify(out.Err)

	fields := []zap.Field{
		zap.String("flow", flow),
		zap.String("visitor", sess.VisitorID),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", elapsed),
	}
	switch outcome {
	case OutcomeOK:
		r.logger.Info("flow completed", fields...)
	case OutcomePrecondition:
		r.logger.Info("flow rejected", append(fields, zap.Error(out.Err))...)
	case OutcomeAppError, OutcomeTransportError:
		r.logger.Warn("flow failed", append(fields, zap.Error(out.Err))...)
	default:
		r.logger.Error("flow failed", append(fields, zap.Error(out.Err))...)
	}

	if r.observer != nil {
		r.observer.FlowFinished(flow, outcome, elapsed)
	}

	if r.recorder != nil {
		input := &db.FlowRunInput{
			VisitorID: sess.VisitorID,
			Flow:      flow,
			Outcome:   outcome,
			Duration:  elapsed,
			StartedAt: start,
		}
		if len(out.View.Notices) > 0 {
			input.Message = out.View.Notices[0].Text
		}
		if out.Err != nil {
			input.Error = out.Err.Error()
		}
		if _, err := r.recorder.RecordFlowRun(context.WithoutCancel(ctx), input); err != nil {
			r.logger.Warn("failed to record flow run", zap.String("flow", flow), zap.Error(err))
		}
	}
}

// Classify names the outcome class of a flow error.
func Classify(err error) string {
	if err == nil {
		return OutcomeOK
	}
	var pre *PreconditionError
	if errors.As(err, &pre) {
		return OutcomePrecondition
	}
	if _, ok := backend.AsApp(err); ok {
		return OutcomeAppError
	}
	if backend.IsTransport(err) {
		return OutcomeTransportError
	}
	return OutcomeRenderError
}

// Upload runs the upload flow.
func (r *Runner) Upload(ctx context.Context, sess *Session, in UploadInput) View {
	return r.Run(ctx, sess, FlowUpload, func(ctx context.Context, env Env) Outcome {
		return r.controller.Upload(ctx, env, in)
	})
}

// RemoveResume runs the remove-resume flow.
func (r *Runner) RemoveResume(ctx context.Context, sess *Session) View {
	return r.Run(ctx, sess, FlowRemoveResume, func(context.Context, Env) Outcome {
		return r.controller.RemoveResume()
	})
}

// SearchJobs runs the job search flow.
func (r *Runner) SearchJobs(ctx context.Context, sess *Session, in SearchInput) View {
	return r.Run(ctx, sess, FlowSearch, func(ctx context.Context, env Env) Outcome {
		return r.controller.SearchJobs(ctx, env, in)
	})
}

// CoverLetter runs the cover letter flow for the job at index.
func (r *Runner) CoverLetter(ctx context.Context, sess *Session, index int) View {
	return r.Run(ctx, sess, FlowCoverLetter, func(ctx context.Context, env Env) Outcome {
		return r.controller.CoverLetter(ctx, env, index)
	})
}

// CloseModal hides the cover letter modal.
func (r *Runner) CloseModal(ctx context.Context, sess *Session) View {
	return r.Run(ctx, sess, FlowCloseModal, func(context.Context, Env) Outcome {
		return r.controller.CloseModal()
	})
}

// SkillGap runs the skill gap flow and, when skills are missing, the course lookup.
func (r *Runner) SkillGap(ctx context.Context, sess *Session, in SkillGapInput) View {
	return r.Run(ctx, sess, FlowSkillGap, func(ctx context.Context, env Env) Outcome {
		return r.controller.SkillGap(ctx, env, in)
	})
}

// StreamSkillGap is SkillGap with progress events.
func (r *Runner) StreamSkillGap(ctx context.Context, sess *Session, in SkillGapInput, emit func(Event)) View {
	return r.Stream(ctx, sess, FlowSkillGap, func(ctx context.Context, env Env) Outcome {
		return r.controller.SkillGap(ctx, env, in)
	}, emit)
}

// Courses runs the course lookup flow.
func (r *Runner) Courses(ctx context.Context, sess *Session, in CoursesInput) View {
	return r.Run(ctx, sess, FlowCourses, func(ctx context.Context, env Env) Outcome {
		return r.controller.Courses(ctx, env, in)
	})
}

// Research runs the company research flow.
func (r *Runner) Research(ctx context.Context, sess *Session, in ResearchInput) View {
	return r.Run(ctx, sess, FlowResearch, func(ctx context.Context, env Env) Outcome {
		return r.controller.Research(ctx, env, in)
	})
}

// ResearchFromJob researches the company of the job at index.
func (r *Runner) ResearchFromJob(ctx context.Context, sess *Session, index int) View {
	return r.Run(ctx, sess, FlowResearch, func(ctx context.Context, env Env) Outcome {
		return r.controller.ResearchFromJob(ctx, env, index)
	})
}

// Navigate switches sess to page. Unknown pages are ignored.
func (r *Runner) Navigate(sess *Session, page string) bool {
	ok := sess.Nav.Navigate(page)
	r.logger.Debug("navigate", zap.String("visitor", sess.VisitorID), zap.String("page", page), zap.Bool("known", ok))
	return ok
}

// Download returns the file produced by get from the session's state. A
// successful download leaves a notice for the next render.
func (r *Runner) Download(sess *Session, get func(state.State) (Download, error)) (Download, error) {
	d, err := get(sess.Store.Snapshot())
	if err != nil {
		return Download{}, err
	}
	sess.Tray.Notify(MsgDownloaded, feedback.KindSuccess)
	return d, nil
}
