package questions

import (
	"context"
	"time"

	"interviewassist/core/internal/decode"
	"interviewassist/core/internal/metrics"
	"interviewassist/core/internal/models"
	"interviewassist/core/internal/prompts"
	"interviewassist/core/internal/resilience"

	"go.uber.org/zap"
)

const Label = "generate_questions"

// TextGenerator is satisfied by *resilience.Executor.
type TextGenerator interface {
	GenerateText(ctx context.Context, label, prompt string) (string, error)
}

type level struct {
	Difficulty string
	Count      int
	TimeLimit  int
	Topics     string
}

type promptData struct {
	Count  int
	Levels []level
}

var defaultLevels = []level{
	{Difficulty: string(models.DifficultyEasy), Count: models.QuestionsPerDifficulty, TimeLimit: models.EasyTimeLimit, Topics: "React basics, JavaScript fundamentals"},
	{Difficulty: string(models.DifficultyMedium), Count: models.QuestionsPerDifficulty, TimeLimit: models.MediumTimeLimit, Topics: "Node.js, APIs, Database concepts"},
	{Difficulty: string(models.DifficultyHard), Count: models.QuestionsPerDifficulty, TimeLimit: models.HardTimeLimit, Topics: "System design, Architecture, Advanced concepts"},
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

// Generate asks the provider for a full question set. Decode and validation
// failures are returned as-is; only the executor retries.
func (s *Service) Generate(ctx context.Context) (models.QuestionSet, error) {
	prompt, err := s.prompts.BuildPrompt(prompts.ModeQuestions, prompts.VariantDefault, promptData{
		Count:  models.QuestionsPerInterview,
		Levels: defaultLevels,
	})
	if err != nil {
		return models.QuestionSet{}, resilience.NewError(resilience.KindRequestFailed, "failed to build question prompt", err)
	}

	text, err := s.generator.GenerateText(ctx, Label, prompt)
	if err != nil {
		return models.QuestionSet{}, err
	}

	questions, err := decode.Questions(text)
	if err != nil {
		return models.QuestionSet{}, err
	}

	counts := models.DifficultyCounts(questions)
	if counts[models.DifficultyEasy] != models.QuestionsPerDifficulty ||
		counts[models.DifficultyMedium] != models.QuestionsPerDifficulty ||
		counts[models.DifficultyHard] != models.QuestionsPerDifficulty {
		s.logger.Warn("Question difficulty distribution not optimal",
			zap.Int("easy", counts[models.DifficultyEasy]),
			zap.Int("medium", counts[models.DifficultyMedium]),
			zap.Int("hard", counts[models.DifficultyHard]))
		metrics.IncDistributionWarning()
	}

	return models.QuestionSet{
		Questions:   questions,
		Source:      models.SourceAI,
		GeneratedAt: s.now(),
	}, nil
}

// GenerateWithFallback never fails: any error yields the canonical offline set.
func (s *Service) GenerateWithFallback(ctx context.Context) models.QuestionSet {
	set, err := s.Generate(ctx)
	if err == nil {
		return set
	}

	kind := resilience.KindOf(err)
	s.logger.Warn("Using fallback questions due to AI service error",
		zap.String("kind", string(kind)),
		zap.Error(err))
	metrics.IncFallback("questions", string(kind))

	return models.QuestionSet{
		Questions:   FallbackQuestions(),
		Source:      models.SourceFallback,
		GeneratedAt: s.now(),
	}
}
