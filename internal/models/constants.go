package models

import (
	"fmt"
	"math"
	"strings"
)

// Difficulty of an interview question; it fully determines the time limit.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// time limits per difficulty, in seconds
const (
	EasyTimeLimit   = 20
	MediumTimeLimit = 60
	HardTimeLimit   = 120
)

// QuestionsPerInterview is the fixed size of a question set.
const QuestionsPerInterview = 6

// QuestionsPerDifficulty is the canonical number of questions per difficulty (2/2/2).
const QuestionsPerDifficulty = 2

// candidate statuses
const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
)

// question / evaluation sources
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// TimeLimit returns the answer time limit in seconds, 0 for unknown difficulties.
func (d Difficulty) TimeLimit() int {
	switch d {
	case DifficultyEasy:
		return EasyTimeLimit
	case DifficultyMedium:
		return MediumTimeLimit
	case DifficultyHard:
		return HardTimeLimit
	default:
		return 0
	}
}

func (d Difficulty) Valid() bool {
	return d.TimeLimit() > 0
}

// ParseDifficulty normalizes case and whitespace and rejects unknown values.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
	return d, nil
}

func DifficultiesList() []string {
	return []string{string(DifficultyEasy), string(DifficultyMedium), string(DifficultyHard)}
}

func ValidStatusesList() []string {
	return []string{StatusPending, StatusInProgress, StatusCompleted}
}

// ClampScore rounds half away from zero and clamps to [0,100].
func ClampScore(raw float64) int {
	if math.IsNaN(raw) {
		return 0
	}
	score := math.Round(raw)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}
