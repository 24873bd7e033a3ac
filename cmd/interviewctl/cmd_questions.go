package main

import (
	"github.com/spf13/cobra"
)

func newQuestionsCommand(opts *rootOptions) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate an interview question set",
		Long: `Generate the six-question set (two easy, two medium, two hard) and print
it as JSON. Without --strict a failing provider yields the built-in set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.services()
			if err != nil {
				return err
			}
			if !strict {
				return writeJSON(cmd.OutOrStdout(), svc.questions.GenerateWithFallback(cmd.Context()))
			}
			set, err := svc.questions.Generate(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), set)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of falling back when the provider errors")
	return cmd
}
