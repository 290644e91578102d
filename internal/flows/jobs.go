package flows

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/nav"
	"github.com/jonathan/job-assistant/internal/state"
	"github.com/jonathan/job-assistant/internal/types"
)

// JobsPageDelay is how long after a search the view switches to the jobs page.
const JobsPageDelay = 500 * time.Millisecond

// SearchJobs replaces the job list with the backend's matches.
func (c *Controller) SearchJobs(ctx context.Context, env Env, in SearchInput) Outcome {
	if !env.State.HasSession() {
		return rejected(FlowSearch, MsgUploadFirst, nil)
	}
	if in.Limit == 0 {
		in.Limit = DefaultLimit
	}
	if err := c.validate.Struct(in); err != nil {
		return rejected(FlowSearch, MsgInvalidLimit, nil)
	}

	env.busy(BusySearch)
	jobs, err := env.Backend.SearchJobs(ctx, types.SearchRequest{
		SessionID: env.State.SessionID,
		Location:  in.Location,
		Limit:     in.Limit,
	})
	if err != nil {
		return failed(err, MsgSearchFailed)
	}
	if jobs == nil {
		jobs = []types.Job{}
	}

	out := Outcome{
		Mutation: func(s state.State) state.State {
			s.Jobs = jobs
			s.Searched = true
			s.Stats.Jobs = len(jobs)
			return s
		},
		View: View{
			Notices:  []feedback.Message{notice(fmt.Sprintf("Found %d jobs!", len(jobs)), feedback.KindSuccess)},
			Navigate: &nav.Directive{Page: nav.PageJobs, Delay: JobsPageDelay},
		},
	}
	frag, err := c.render.Jobs(jobs)
	attach(&out, err, frag)
	return out
}

// CoverLetter generates a letter for the job at index.
func (c *Controller) CoverLetter(ctx context.Context, env Env, index int) Outcome {
	if !env.State.HasSession() {
		return rejected(FlowCoverLetter, MsgSessionExpired, toHome())
	}
	job, ok := env.State.JobAt(index)
	if !ok {
		return rejected(FlowCoverLetter, MsgInvalidJob, nil)
	}

	env.busy(BusyCoverLetter)
	text, err := env.Backend.GenerateCoverLetter(ctx, types.CoverLetterRequest{
		SessionID: env.State.SessionID,
		Job:       job,
	})
	if err != nil {
		return failed(err, MsgGenerationFailed)
	}

	letter := state.CoverLetter{Text: text, Company: job.Company, Open: true}
	out := Outcome{
		Mutation: func(s state.State) state.State {
			l := letter
			s.CoverLetter = &l
			return s
		},
		View: View{Notices: []feedback.Message{notice(MsgLetterGenerated, feedback.KindSuccess)}},
	}
	frag, err := c.render.CoverLetter(letter)
	attach(&out, err, frag)
	return out
}

// CloseModal hides the cover letter modal. The letter stays downloadable.
func (c *Controller) CloseModal() Outcome {
	return Outcome{
		Mutation: func(s state.State) state.State {
			if s.CoverLetter != nil {
				l := *s.CoverLetter
				l.Open = false
				s.CoverLetter = &l
			}
			return s
		},
	}
}

// ResearchFromJob researches the company and title of the job at index.
func (c *Controller) ResearchFromJob(ctx context.Context, env Env, index int) Outcome {
	job, ok := env.State.JobAt(index)
	if !ok {
		return rejected(FlowResearch, MsgInvalidJob, nil)
	}
	return c.Research(ctx, env, ResearchInput{CompanyName: job.Company, JobTitle: job.Title})
}
