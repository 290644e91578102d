package flows

import (
	"context"

	"github.com/jonathan/job-assistant/internal/feedback"
	"github.com/jonathan/job-assistant/internal/nav"
	"github.com/jonathan/job-assistant/internal/state"
	"github.com/jonathan/job-assistant/internal/types"
)

// Research gathers interview research for a company and role. It needs no
// resume session.
func (c *Controller) Research(ctx context.Context, env Env, in ResearchInput) Outcome {
	// Blank inputs are rejected, but the backend gets the values as typed.
	check := ResearchInput{CompanyName: trimmed(in.CompanyName), JobTitle: trimmed(in.JobTitle)}
	if err := c.validate.Struct(check); err != nil {
		return rejected(FlowResearch, MsgResearchInputs, nil)
	}

	env.busy(BusyResearch(in.CompanyName))
	research, err := env.Backend.ResearchCompany(ctx, types.ResearchRequest(in))
	if err != nil {
		return failed(err, MsgResearchFailed)
	}
	if research.CompanyName == "" {
		research.CompanyName = in.CompanyName
	}

	out := Outcome{
		Mutation: func(s state.State) state.State {
			r := research
			s.Research = &r
			s.Stats.CompaniesResearched++
			return s
		},
		View: View{
			Notices:  []feedback.Message{notice(MsgResearchComplete, feedback.KindSuccess)},
			Navigate: &nav.Directive{Page: nav.PageResearch, OnlyIfInactive: true},
		},
	}
	frags, err := c.render.Research(research)
	attach(&out, err, frags...)
	return out
}
