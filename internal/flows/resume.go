package flows

import (
	"context"

	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/state"
)

// PDFType is the only declared type accepted for dropped files.
const PDFType = "application/pdf"

// Upload sends a resume to the backend and starts a session. Dropped files
// must declare PDFType; picked files are left to the backend to check.
func (c *Controller) Upload(ctx context.Context, env Env, in UploadInput) Outcome {
	if in.Source == SourceDrop && in.DeclaredType != PDFType {
		return rejected(FlowUpload, MsgPDFOnly, nil)
	}
	if err := c.validate.Struct(in); err != nil {
		return rejected(FlowUpload, MsgPDFOnly, nil)
	}

	env.busy(BusyUpload)
	res, err := env.Backend.UploadResume(ctx, in.Filename, in.DeclaredType, in.Body)
	if err != nil {
		return failed(err, MsgUploadFailed)
	}

	filename := res.Filename
	if filename == "" {
		filename = in.Filename
	}
	skills := append([]string(nil), res.Skills...)

	out := Outcome{
		Mutation: func(s state.State) state.State {
			s.SessionID = res.SessionID
			s.ResumeFilename = filename
			s.Skills = skills
			s.Stats.Skills = len(skills)
			return s
		},
		View: View{Notices: []feedback.Message{notice(MsgUploaded, feedback.KindSuccess)}},
	}
	frag, err := c.render.SkillTags(skills)
	attach(&out, err, frag)
	return out
}

// RemoveResume forgets the resume and its session.
func (c *Controller) RemoveResume() Outcome {
	return Outcome{
		Mutation: func(s state.State) state.State {
			s.SessionID = ""
			s.ResumeFilename = ""
			s.Skills = nil
			s.Stats.Skills = 0
			return s
		},
		View: View{Notices: []feedback.Message{notice(MsgResumeRemoved, feedback.KindInfo)}},
	}
}
