package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"interviewassist/core/internal/models"
	"interviewassist/core/internal/summary"

	"github.com/spf13/cobra"
)

type summaryResult struct {
	Name           string `json:"name"`
	Score          int    `json:"score"`
	Competency     string `json:"competency"`
	Recommendation string `json:"recommendation"`
	Summary        string `json:"summary"`
}

func newSummaryCommand(opts *rootOptions) *cobra.Command {
	var name, answersPath string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Write the final summary for a set of answers",
		Long: `Read a JSON array of evaluated answers (from --answers, or stdin with "-")
and print the mean score together with the written summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := readAnswers(cmd.InOrStdin(), answersPath)
			if err != nil {
				return err
			}
			svc, err := opts.services()
			if err != nil {
				return err
			}
			score := summary.MeanScore(answers)
			return writeJSON(cmd.OutOrStdout(), summaryResult{
				Name:           name,
				Score:          score,
				Competency:     summary.Competency(score),
				Recommendation: summary.Recommendation(score),
				Summary:        svc.summary.Summarize(cmd.Context(), name, answers),
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Candidate name (required)")
	cmd.Flags().StringVar(&answersPath, "answers", "-", "Path to the answers JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func readAnswers(stdin io.Reader, path string) ([]models.Answer, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening answers: %w", err)
		}
		defer f.Close()
		r = f
	}

	var answers []models.Answer
	if err := json.NewDecoder(r).Decode(&answers); err != nil {
		return nil, fmt.Errorf("decoding answers: %w", err)
	}
	if len(answers) == 0 {
		return nil, errors.New("no answers to summarize")
	}
	return answers, nil
}
