package main

import (
	"fmt"

	"interviewassist/core/internal/config"
	"interviewassist/core/internal/evaluation"
	"interviewassist/core/internal/llm"
	_ "interviewassist/core/internal/llm/gemini"
	_ "interviewassist/core/internal/llm/offline"
	"interviewassist/core/internal/prompts"
	"interviewassist/core/internal/questions"
	"interviewassist/core/internal/resilience"
	"interviewassist/core/internal/summary"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// rootOptions is shared by every subcommand; it is filled in by the
// persistent pre-run hook.
type rootOptions struct {
	provider string
	debug    bool

	cfg    *config.Config
	logger *zap.Logger
}

type services struct {
	questions  *questions.Service
	evaluation *evaluation.Service
	summary    *summary.Generator
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "interviewctl",
		Short: "interviewctl - drive the interview assistant from the terminal",
		Long: `interviewctl exercises the interview assistant without the HTTP server.

It generates question sets, scores single answers, writes summaries and
browses the candidate roster. Every AI call falls back to the offline
heuristics unless --strict is given.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "AI provider (gemini, offline); defaults to AI_PROVIDER")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging on stderr")
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		if opts.provider != "" {
			cfg.Provider = opts.provider
		}
		opts.cfg = cfg

		opts.logger = zap.NewNop()
		if opts.debug {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			opts.logger = logger
		}
		return nil
	}

	cmd.AddCommand(newQuestionsCommand(opts))
	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newSummaryCommand(opts))
	cmd.AddCommand(newCandidatesCommand(opts))

	return cmd
}

// services builds the AI-backed services the same way the server does.
func (o *rootOptions) services() (*services, error) {
	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		return nil, fmt.Errorf("loading prompts: %w", err)
	}
	provider, err := llm.NewProvider(o.cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}
	executor := resilience.NewExecutor(provider,
		resilience.NewRateLimiter(o.cfg.RateLimit, o.cfg.RateWindow),
		resilience.WithTimeout(o.cfg.RequestTimeout),
		resilience.WithMaxAttempts(o.cfg.MaxAttempts),
		resilience.WithRetryDelay(o.cfg.RetryDelay),
		resilience.WithLogger(o.logger))

	return &services{
		questions:  questions.NewService(executor, promptManager, o.logger),
		evaluation: evaluation.NewService(executor, promptManager, o.logger),
		summary:    summary.NewGenerator(executor, promptManager, o.logger),
	}, nil
}

func execute() error {
	return newRootCommand().Execute()
}
