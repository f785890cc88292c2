package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMatchCmd(app *cli) *cobra.Command {
	var (
		jobFile    string
		resumeFile string
		topN       int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score a resume against a job description",
		Long:  "Extract the skills of a job description and a resume and report matched and missing skills with a deterministic match score.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if topN < 0 {
				return fmt.Errorf("--top-n cannot be negative")
			}
			jobText, err := readDocument(jobFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			resumeText, err := readDocument(resumeFile, cmd.InOrStdin())
			if err != nil {
				return err
			}

			eng, err := app.loadEngine(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer eng.Stop()

			analysis, err := eng.Analyze(jobText, resumeText, topN)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(app.out, analysis)
			}
			fmt.Fprintln(app.out, analysis.Explanation)
			if analysis.Summary != "" {
				fmt.Fprintf(app.out, "\n%s\n", analysis.Summary)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&jobFile, "job", "j", "", "Job description text file ('-' for stdin)")
	cmd.Flags().StringVarP(&resumeFile, "resume", "r", "", "Resume text file ('-' for stdin)")
	cmd.Flags().IntVar(&topN, "top-n", 0, "Number of top job keywords to report (0 uses SKILLMATCH_TOP_N)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis as JSON")
	_ = cmd.MarkFlagRequired("job")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}
