package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/flows"
)

var researchCommand = &cobra.Command{
	Use:   "research",
	Short: "Research a company for an interview",
	Long:  `Prints an interview brief, recent news, culture and hiring notes and interview question sources for a company and role, and saves the brief as a text file. No resume is needed.`,
	RunE:  runResearchCmd,
}

var (
	researchCompany string
	researchTitle   string
	researchOut     string
)

func init() {
	researchCommand.Flags().StringVar(&researchCompany, "company", "", "Company name (required)")
	researchCommand.Flags().StringVar(&researchTitle, "title", "", "Job title (required)")
	researchCommand.Flags().StringVarP(&researchOut, "out", "o", ".", "Directory for the interview brief")

	_ = researchCommand.MarkFlagRequired("company")
	_ = researchCommand.MarkFlagRequired("title")

	rootCmd.AddCommand(researchCommand)
}

func runResearchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := cliConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newAssistant(cmd.Context(), cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	return a.research(cmd.Context(), cmd.OutOrStdout(), flows.ResearchInput{
		CompanyName: researchCompany,
		JobTitle:    researchTitle,
	}, researchOut)
}

func (a *assistant) research(ctx context.Context, out io.Writer, in flows.ResearchInput, dir string) error {
	view := a.runner.Research(ctx, a.session, in)
	if err := check(view); err != nil {
		return fmt.Errorf("research: %w", err)
	}
	return a.printResearch(out, dir)
}
