package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/flows"
)

var coursesCommand = &cobra.Command{
	Use:   "courses",
	Short: "Find learning resources for skills",
	RunE:  runCoursesCmd,
}

var courseSkills []string

func init() {
	coursesCommand.Flags().StringSliceVarP(&courseSkills, "skill", "s", nil, "Skill to find courses for (repeatable, comma separated)")
	_ = coursesCommand.MarkFlagRequired("skill")

	rootCmd.AddCommand(coursesCommand)
}

func runCoursesCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := cliConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newAssistant(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.courses(cmd.Context(), cmd.OutOrStdout(), courseSkills)
}

// courses prints the lookup result. The lookup itself degrades silently, so
// an empty result is reported here instead.
func (a *assistant) courses(ctx context.Context, out io.Writer, skills []string) error {
	a.runner.Courses(ctx, a.session, flows.CoursesInput{Skills: skills})

	sets := a.state().Courses
	if len(sets) == 0 {
		_, _ = fmt.Fprintln(out, "No courses found.")
		return nil
	}
	a.printer.PrintCourses(sets)
	return nil
}
