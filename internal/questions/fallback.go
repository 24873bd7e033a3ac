package questions

import "interviewassist/core/internal/models"

var fallbackQuestions = [models.QuestionsPerInterview]models.InterviewQuestion{
	{ID: "fallback_q1", Question: "What is the difference between useState and useEffect hooks in React?", Difficulty: models.DifficultyEasy, TimeLimit: models.EasyTimeLimit},
	{ID: "fallback_q2", Question: "Explain the concept of props drilling and how you would solve it.", Difficulty: models.DifficultyEasy, TimeLimit: models.EasyTimeLimit},
	{ID: "fallback_q3", Question: "How would you implement JWT authentication in a Node.js Express application?", Difficulty: models.DifficultyMedium, TimeLimit: models.MediumTimeLimit},
	{ID: "fallback_q4", Question: "Describe how you would optimize React application performance.", Difficulty: models.DifficultyMedium, TimeLimit: models.MediumTimeLimit},
	{ID: "fallback_q5", Question: "Design a scalable file upload system for a web application.", Difficulty: models.DifficultyHard, TimeLimit: models.HardTimeLimit},
	{ID: "fallback_q6", Question: "How would you implement real-time features in a React/Node.js application?", Difficulty: models.DifficultyHard, TimeLimit: models.HardTimeLimit},
}

// FallbackQuestions returns a fresh copy of the canonical offline set.
func FallbackQuestions() []models.InterviewQuestion {
	out := make([]models.InterviewQuestion, len(fallbackQuestions))
	copy(out, fallbackQuestions[:])
	return out
}
