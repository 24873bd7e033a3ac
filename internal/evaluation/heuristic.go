package evaluation

import (
	"strings"
	"unicode/utf8"

	"interviewassist/core/internal/models"
)

const fallbackFeedback = "Automatic evaluation (AI unavailable). Answer provided covers key concepts with reasonable depth. Consider adding more technical details and examples."

// technicalKeywords are matched as case-insensitive substrings, so "nosql"
// also counts "sql".
var technicalKeywords = []string{
	"function", "component", "react", "node", "javascript", "typescript",
	"api", "database", "sql", "nosql", "mongodb", "express", "async",
	"promise", "callback", "event", "state", "props", "hook", "middleware",
}

const (
	baseScore       = 50
	keywordPoints   = 3
	maxKeywordBonus = 20
)

// HeuristicScore is the deterministic offline score for an answer.
func HeuristicScore(question models.InterviewQuestion, answer string, timeSpent int) int {
	score := baseScore

	switch length := utf8.RuneCountInString(strings.TrimSpace(answer)); {
	case length > 200:
		score += 15
	case length > 100:
		score += 10
	case length > 50:
		score += 5
	}

	if question.TimeLimit > 0 {
		ratio := float64(timeSpent) / float64(question.TimeLimit)
		if ratio > 0.8 {
			score -= 10
		} else if ratio < 0.3 {
			score += 5
		}
	}

	switch question.Difficulty {
	case models.DifficultyEasy:
		score += 10
	case models.DifficultyHard:
		score -= 5
	}

	score += min(KeywordCount(answer)*keywordPoints, maxKeywordBonus)

	return models.ClampScore(float64(score))
}

// KeywordCount is the number of distinct vocabulary keywords present in answer.
func KeywordCount(answer string) int {
	lower := strings.ToLower(answer)
	found := 0
	for _, keyword := range technicalKeywords {
		if strings.Contains(lower, keyword) {
			found++
		}
	}
	return found
}

// FallbackEvaluation builds the heuristic evaluation; EvaluatedAt is left to
// the caller.
func FallbackEvaluation(question models.InterviewQuestion, answer string, timeSpent int) models.Evaluation {
	return models.Evaluation{
		Score:        HeuristicScore(question, answer, timeSpent),
		Feedback:     fallbackFeedback,
		Strengths:    []string{"Provided relevant answer", "Used appropriate terminology"},
		Improvements: []string{"Add more technical details", "Include specific examples", "Consider edge cases"},
		Source:       models.SourceFallback,
	}
}
