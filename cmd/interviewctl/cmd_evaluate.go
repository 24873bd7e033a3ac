package main

import (
	"errors"
	"strings"

	"interviewassist/core/internal/models"

	"github.com/spf13/cobra"
)

type evaluateOptions struct {
	question   string
	answer     string
	difficulty string
	timeSpent  int
	strict     bool
}

func newEvaluateCommand(opts *rootOptions) *cobra.Command {
	eo := &evaluateOptions{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a single answer",
		Long: `Score one answer to one question and print the evaluation as JSON.
The time limit follows from --difficulty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := eo.interviewQuestion()
			if err != nil {
				return err
			}
			svc, err := opts.services()
			if err != nil {
				return err
			}
			if !eo.strict {
				return writeJSON(cmd.OutOrStdout(),
					svc.evaluation.EvaluateWithFallback(cmd.Context(), question, eo.answer, eo.timeSpent))
			}
			eval, err := svc.evaluation.Evaluate(cmd.Context(), question, eo.answer, eo.timeSpent)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), eval)
		},
	}

	cmd.Flags().StringVarP(&eo.question, "question", "q", "", "Question text (required)")
	cmd.Flags().StringVarP(&eo.answer, "answer", "a", "", "Candidate answer")
	cmd.Flags().StringVarP(&eo.difficulty, "difficulty", "d", string(models.DifficultyMedium), "Question difficulty: easy, medium or hard")
	cmd.Flags().IntVar(&eo.timeSpent, "time-spent", 0, "Seconds the candidate spent answering")
	cmd.Flags().BoolVar(&eo.strict, "strict", false, "Fail instead of falling back when the provider errors")
	_ = cmd.MarkFlagRequired("question")

	return cmd
}

func (eo *evaluateOptions) interviewQuestion() (models.InterviewQuestion, error) {
	if strings.TrimSpace(eo.question) == "" {
		return models.InterviewQuestion{}, errors.New("question must not be empty")
	}
	difficulty, err := models.ParseDifficulty(eo.difficulty)
	if err != nil {
		return models.InterviewQuestion{}, err
	}
	if eo.timeSpent < 0 {
		return models.InterviewQuestion{}, errors.New("time spent must not be negative")
	}
	return models.InterviewQuestion{
		ID:         "cli",
		Question:   eo.question,
		Difficulty: difficulty,
		TimeLimit:  difficulty.TimeLimit(),
	}, nil
}
