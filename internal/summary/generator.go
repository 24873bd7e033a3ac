package summary

import (
	"context"
	"fmt"
	"math"
	"strings"

	"interviewassist/core/internal/metrics"
	"interviewassist/core/internal/models"
	"interviewassist/core/internal/prompts"
	"interviewassist/core/internal/resilience"

	"go.uber.org/zap"
)

const Label = "generate_summary"

const NoAnswersSummary = "No answers provided for evaluation."

// TextGenerator is satisfied by *resilience.Executor.
type TextGenerator interface {
	GenerateText(ctx context.Context, label, prompt string) (string, error)
}

type answerData struct {
	Question   string
	Answer     string
	Difficulty string
	Score      int
	TimeSpent  int
	TimeLimit  int
}

type promptData struct {
	CandidateName string
	Answers       []answerData
	OverallScore  int
}

type Generator struct {
	generator TextGenerator
	prompts   prompts.PromptProvider
	logger    *zap.Logger
}

func NewGenerator(generator TextGenerator, promptProvider prompts.PromptProvider, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		generator: generator,
		prompts:   promptProvider,
		logger:    logger,
	}
}

// Summarize always returns a summary; provider failures fall back to the
// templated sentence.
func (g *Generator) Summarize(ctx context.Context, candidateName string, answers []models.Answer) string {
	if len(answers) == 0 {
		return NoAnswersSummary
	}

	mean := MeanScore(answers)
	text, err := g.generate(ctx, candidateName, answers, mean)
	if err == nil {
		return text
	}

	kind := resilience.KindOf(err)
	g.logger.Warn("Using fallback summary due to AI service error",
		zap.String("kind", string(kind)),
		zap.Error(err))
	metrics.IncFallback("summary", string(kind))
	return FallbackSummary(candidateName, mean)
}

func (g *Generator) generate(ctx context.Context, candidateName string, answers []models.Answer, mean int) (string, error) {
	data := promptData{
		CandidateName: candidateName,
		Answers:       make([]answerData, 0, len(answers)),
		OverallScore:  mean,
	}
	for _, a := range answers {
		data.Answers = append(data.Answers, answerData{
			Question:   a.Question,
			Answer:     a.Answer,
			Difficulty: string(a.Difficulty),
			Score:      a.Score,
			TimeSpent:  a.TimeSpent,
			TimeLimit:  a.TimeLimit,
		})
	}

	prompt, err := g.prompts.BuildPrompt(prompts.ModeSummary, prompts.VariantDefault, data)
	if err != nil {
		return "", resilience.NewError(resilience.KindRequestFailed, "failed to build summary prompt", err)
	}

	text, err := g.generator.GenerateText(ctx, Label, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", resilience.NewError(resilience.KindInvalidResponse, "AI returned an empty summary", nil)
	}
	return text, nil
}

// MeanScore is the rounded mean answer score, 0 for no answers.
func MeanScore(answers []models.Answer) int {
	if len(answers) == 0 {
		return 0
	}
	total := 0
	for _, a := range answers {
		total += a.Score
	}
	return int(math.Round(float64(total) / float64(len(answers))))
}

func Competency(score int) string {
	switch {
	case score >= 80:
		return "Strong"
	case score >= 65:
		return "Good"
	case score >= 50:
		return "Adequate"
	default:
		return "Below expectations"
	}
}

func Recommendation(score int) string {
	switch {
	case score >= 75:
		return "Hire"
	case score >= 60:
		return "Consider"
	default:
		return "No Hire"
	}
}

func FallbackSummary(candidateName string, score int) string {
	return fmt.Sprintf("%s demonstrated %s technical competency with an overall score of %d/100. "+
		"Showed understanding of core concepts with room for improvement in advanced topics. Recommendation: %s.",
		candidateName, strings.ToLower(Competency(score)), score, Recommendation(score))
}
