package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/flows"
	"github.com/jonathan/job-assistant/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Analyze a resume and act on the matching jobs",
	Long: `Uploads a resume, searches matching jobs and prints them. Optionally writes cover
letters for chosen jobs, researches the company of one job and analyzes the skill
gap against a job description, with learning resources for missing skills.

Job indexes refer to the numbers printed in the job list, starting at 0.`,
	RunE: runAssistantCmd,
}

type runOptions struct {
	Resume         string
	Location       string
	Limit          int
	CoverLetters   []int
	ResearchJob    int
	JobDescription string
	Out            string
	ShowAll        bool
}

var runOpts runOptions

func init() {
	runCommand.Flags().StringVarP(&runOpts.Resume, "resume", "r", "", "Path to the resume PDF (required)")
	runCommand.Flags().StringVarP(&runOpts.Location, "location", "l", "", "Job search location")
	runCommand.Flags().IntVar(&runOpts.Limit, "limit", flows.DefaultLimit, "Number of jobs to search for (1-50)")
	runCommand.Flags().IntSliceVar(&runOpts.CoverLetters, "cover-letter", nil, "Write a cover letter for the job at this index (repeatable)")
	runCommand.Flags().IntVar(&runOpts.ResearchJob, "research-job", -1, "Research the company of the job at this index")
	runCommand.Flags().StringVar(&runOpts.JobDescription, "job-description", "", "Path to a job description to analyze skill gaps against")
	runCommand.Flags().StringVarP(&runOpts.Out, "out", "o", ".", "Directory for cover letters and interview briefs")
	runCommand.Flags().BoolVar(&runOpts.ShowAll, "all", false, "Print every job instead of the first few")

	_ = runCommand.MarkFlagRequired("resume")

	rootCmd.AddCommand(runCommand)
}

func runAssistantCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := cliConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newAssistant(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.run(cmd.Context(), cmd.OutOrStdout(), runOpts)
}

func (a *assistant) run(ctx context.Context, out io.Writer, opts runOptions) error {
	if opts.ShowAll {
		a.printer.MaxItems = -1
	}

	if err := a.upload(ctx, opts.Resume); err != nil {
		return err
	}

	view := a.runner.SearchJobs(ctx, a.session, flows.SearchInput{Location: opts.Location, Limit: opts.Limit})
	if err := check(view); err != nil {
		return fmt.Errorf("job search: %w", err)
	}
	a.printer.PrintJobs(a.state().Jobs)

	for _, index := range opts.CoverLetters {
		view := a.runner.CoverLetter(ctx, a.session, index)
		if err := check(view); err != nil {
			return fmt.Errorf("cover letter for job %d: %w", index, err)
		}
		path, err := a.save(opts.Out, flows.CoverLetterDownload)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out, "Cover letter for job %d saved to %s\n", index, path)
	}

	if opts.ResearchJob >= 0 {
		view := a.runner.ResearchFromJob(ctx, a.session, opts.ResearchJob)
		if err := check(view); err != nil {
			return fmt.Errorf("research for job %d: %w", opts.ResearchJob, err)
		}
		if err := a.printResearch(out, opts.Out); err != nil {
			return err
		}
	}

	if opts.JobDescription != "" {
		description, err := os.ReadFile(opts.JobDescription)
		if err != nil {
			return fmt.Errorf("failed to read job description: %w", err)
		}
		view := a.runner.SkillGap(ctx, a.session, flows.SkillGapInput{JobDescription: string(description)})
		if err := check(view); err != nil {
			return fmt.Errorf("skill analysis: %w", err)
		}
		st := a.state()
		if st.Analysis != nil {
			a.printer.PrintSkillAnalysis(*st.Analysis)
		}
		a.printer.PrintCourses(st.Courses)
	}

	a.printer.PrintStats(a.state().Stats)
	return nil
}

// upload sends the resume as if it were dropped on the page, so only files
// that look like PDFs are accepted.
func (a *assistant) upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open resume: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat resume: %w", err)
	}
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return fmt.Errorf("failed to detect resume type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind resume: %w", err)
	}
	declared := mtype.String()
	if mtype.Is(flows.PDFType) {
		declared = flows.PDFType
	}

	view := a.runner.Upload(ctx, a.session, flows.UploadInput{
		Filename:     info.Name(),
		DeclaredType: declared,
		Source:       flows.SourceDrop,
		Body:         f,
	})
	if err := check(view); err != nil {
		return fmt.Errorf("upload %s (%s): %w", info.Name(), declared, err)
	}

	st := a.state()
	a.printer.PrintUpload(types.UploadResult{
		SessionID: st.SessionID,
		Filename:  st.ResumeFilename,
		Skills:    st.Skills,
	}, info.Size())
	return nil
}

// printResearch prints the last research result and saves its brief.
func (a *assistant) printResearch(out io.Writer, dir string) error {
	st := a.state()
	if st.Research == nil {
		return nil
	}
	if err := a.printer.PrintResearch(*st.Research, a.markdown); err != nil {
		return err
	}
	path, err := a.save(dir, flows.BriefDownload)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Interview brief saved to %s\n", path)
	return nil
}
