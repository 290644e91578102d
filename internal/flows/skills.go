package flows

import (
	"context"

	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/state"
	"github.com/jonathan/job-assistant/internal/types"
)

// SkillGap compares the resume with a job description. When skills are
// missing, the outcome asks for a course lookup with exactly those skills.
func (c *Controller) SkillGap(ctx context.Context, env Env, in SkillGapInput) Outcome {
	if !env.State.HasSession() {
		return rejected(FlowSkillGap, MsgUploadFirst, toHome())
	}
	if err := c.validate.Struct(SkillGapInput{JobDescription: trimmed(in.JobDescription)}); err != nil {
		return rejected(FlowSkillGap, MsgPasteDescription, nil)
	}

	env.busy(BusySkillGap)
	analysis, err := env.Backend.AnalyzeSkills(ctx, types.AnalyzeRequest{
		SessionID:      env.State.SessionID,
		JobDescription: in.JobDescription,
	})
	if err != nil {
		return failed(err, MsgAnalysisFailed)
	}

	out := Outcome{
		Mutation: func(s state.State) state.State {
			a := analysis
			s.Analysis = &a
			return s
		},
		View: View{Notices: []feedback.Message{notice(MsgAnalysisComplete, feedback.KindSuccess)}},
	}
	if analysis.HasGaps() {
		out.FollowUp = &CoursesInput{Skills: append([]string(nil), analysis.MissingSkills...)}
	}
	frags, err := c.render.SkillAnalysis(analysis)
	attach(&out, err, frags...)
	return out
}

// Courses looks up learning resources. Failures produce no notice and leave
// the state alone; the Runner logs them.
func (c *Controller) Courses(ctx context.Context, env Env, in CoursesInput) Outcome {
	if err := c.validate.Struct(in); err != nil {
		return Outcome{Err: &PreconditionError{Flow: FlowCourses, Message: "no skills given"}}
	}

	env.busy(BusyCourses)
	sets, err := env.Backend.GetCourses(ctx, types.CoursesRequest{Skills: in.Skills})
	if err != nil {
		return Outcome{Err: err}
	}

	out := Outcome{
		Mutation: func(s state.State) state.State {
			s.Courses = sets
			s.Stats.CoursesFound = len(sets)
			return s
		},
	}
	frag, err := c.render.Courses(sets)
	attach(&out, err, frag)
	return out
}
