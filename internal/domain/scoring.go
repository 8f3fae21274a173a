package domain

import (
	"fmt"
	"math"
)

// LowTimeThreshold is the remaining time, in seconds, under which the countdown is flagged.
const LowTimeThreshold = 300

// Score counts questions whose recorded answer equals the correct option.
// Unanswered questions never match.
func Score(questions []Question, answers map[string]int) int {
	score := 0
	for _, q := range questions {
		if chosen, ok := answers[q.ID]; ok && chosen == q.CorrectAnswer {
			score++
		}
	}
	return score
}

// Percentage rounds score/total to a whole percent. An empty bank scores 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// PerformanceMessage maps a percentage onto the result headline.
func PerformanceMessage(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding!"
	case percentage >= 80:
		return "Excellent Work!"
	case percentage >= 70:
		return "Good Job!"
	case percentage >= 60:
		return "Keep Improving!"
	default:
		return "Practice More!"
	}
}

// Breakdown lists every question with the participant's answer and the correct one.
func Breakdown(questions []Question, answers map[string]int) []QuestionResult {
	results := make([]QuestionResult, 0, len(questions))
	for _, q := range questions {
		r := QuestionResult{
			QuestionID:    q.ID,
			Text:          q.Text,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}
		if chosen, ok := answers[q.ID]; ok {
			chosen := chosen
			r.UserAnswer = &chosen
			r.Correct = chosen == q.CorrectAnswer
		}
		results = append(results, r)
	}
	return results
}

// NewResult assembles the result view for a recorded attempt.
func NewResult(attempt QuizAttempt, questions []Question) Result {
	pct := Percentage(attempt.Score, attempt.TotalQuestions)
	return Result{
		Attempt:        attempt,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     pct,
		TimeSpent:      FormatClock(attempt.TimeSpentSeconds),
		Message:        PerformanceMessage(pct),
		Questions:      Breakdown(questions, attempt.Answers),
	}
}

// FormatClock renders seconds as MM:SS.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// LowTime reports whether the countdown should be highlighted.
func LowTime(seconds int) bool {
	return seconds <= LowTimeThreshold
}
