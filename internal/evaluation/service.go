package evaluation

import (
	"context"
	"fmt"
	"time"

	"interviewassist/core/internal/decode"
	"interviewassist/core/internal/metrics"
	"interviewassist/core/internal/models"
	"interviewassist/core/internal/prompts"
	"interviewassist/core/internal/resilience"

	"go.uber.org/zap"
)

const Label = "evaluate_answer"

// TextGenerator is satisfied by *resilience.Executor.
type TextGenerator interface {
	GenerateText(ctx context.Context, label, prompt string) (string, error)
}

type promptData struct {
	Question   string
	Answer     string
	Difficulty string
	TimeLimit  int
	TimeSpent  int
}

type Service struct {
	generator TextGenerator
	prompts   prompts.PromptProvider
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(generator TextGenerator, promptProvider prompts.PromptProvider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		generator: generator,
		prompts:   promptProvider,
		logger:    logger,
		now:       time.Now,
	}
}

// Evaluate scores one answer with the provider. The prompt variant carries the
// expectations for the question's difficulty.
func (s *Service) Evaluate(ctx context.Context, question models.InterviewQuestion, answer string, timeSpent int) (models.Evaluation, error) {
	if !question.Difficulty.Valid() {
		return models.Evaluation{}, resilience.NewError(resilience.KindRequestFailed,
			fmt.Sprintf("unknown difficulty %q", question.Difficulty), nil)
	}

	prompt, err := s.prompts.BuildPrompt(prompts.ModeEvaluation, string(question.Difficulty), promptData{
		Question:   question.Question,
		Answer:     answer,
		Difficulty: string(question.Difficulty),
		TimeLimit:  question.TimeLimit,
		TimeSpent:  timeSpent,
	})
	if err != nil {
		return models.Evaluation{}, resilience.NewError(resilience.KindRequestFailed, "failed to build evaluation prompt", err)
	}

	text, err := s.generator.GenerateText(ctx, Label, prompt)
	if err != nil {
		return models.Evaluation{}, err
	}

	eval, err := decode.Evaluation(text)
	if err != nil {
		return models.Evaluation{}, err
	}
	eval.EvaluatedAt = s.now()
	eval.Source = models.SourceAI
	metrics.ObserveAnswerScore(string(question.Difficulty), eval.Source, eval.Score)
	return *eval, nil
}

// EvaluateWithFallback never fails: any error yields the heuristic score.
func (s *Service) EvaluateWithFallback(ctx context.Context, question models.InterviewQuestion, answer string, timeSpent int) models.Evaluation {
	eval, err := s.Evaluate(ctx, question, answer, timeSpent)
	if err == nil {
		return eval
	}

	kind := resilience.KindOf(err)
	s.logger.Warn("Using fallback evaluation due to AI service error",
		zap.String("question_id", question.ID),
		zap.String("kind", string(kind)),
		zap.Error(err))
	metrics.IncFallback("evaluation", string(kind))

	eval = FallbackEvaluation(question, answer, timeSpent)
	eval.EvaluatedAt = s.now()
	metrics.ObserveAnswerScore(string(question.Difficulty), eval.Source, eval.Score)
	return eval
}
