package domain

import "time"

// Subject is immutable catalog reference data.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// QuestionBank is a named, timed set of questions for a subject and class level.
type QuestionBank struct {
	ID               string `json:"id"`
	SubjectID        string `json:"subjectId"`
	ClassLevel       string `json:"classLevel"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Difficulty       string `json:"difficulty"`
	TimeLimitMinutes int    `json:"timeLimit"`
	TotalQuestions   int    `json:"totalQuestions"`
	AvgScore         int    `json:"avgScore"`
}

// TimeLimitSeconds is the countdown budget a session starts with.
func (b QuestionBank) TimeLimitSeconds() int {
	return b.TimeLimitMinutes * 60
}

// Question is a multiple choice question; CorrectAnswer indexes Options.
type Question struct {
	ID             string   `json:"id"`
	QuestionBankID string   `json:"questionBankId"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	CorrectAnswer  int      `json:"correctAnswer"`
	Explanation    string   `json:"explanation,omitempty"`
}

// View hides the correct answer while a session is running.
func (q Question) View() QuestionView {
	return QuestionView{
		ID:      q.ID,
		Text:    q.Text,
		Options: append([]string(nil), q.Options...),
	}
}

// QuestionView is what a participant sees before submitting.
type QuestionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// AttemptInput carries a finished attempt to an attempt recorder.
type AttemptInput struct {
	UserID           string         `json:"userId,omitempty"`
	QuestionBankID   string         `json:"questionBankId" validate:"required"`
	Score            int            `json:"score" validate:"gte=0,ltefield=TotalQuestions"`
	TotalQuestions   int            `json:"totalQuestions" validate:"gte=1"`
	TimeSpentSeconds int            `json:"timeSpent" validate:"gte=0"`
	Answers          map[string]int `json:"answers" validate:"required,dive,keys,required,endkeys,gte=0"`
}

// AttemptRequest is an attempt as submitted by a client. Pointer fields tell an
// absent value apart from zero.
type AttemptRequest struct {
	UserID           string         `json:"userId,omitempty"`
	QuestionBankID   string         `json:"questionBankId" validate:"required"`
	Score            *int           `json:"score" validate:"required,gte=0"`
	TotalQuestions   *int           `json:"totalQuestions" validate:"required,gte=1"`
	TimeSpentSeconds *int           `json:"timeSpent" validate:"required,gte=0"`
	Answers          map[string]int `json:"answers" validate:"required"`
}

// QuizAttempt is a stored attempt. It is never mutated after creation.
type QuizAttempt struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId,omitempty"`
	QuestionBankID   string         `json:"questionBankId"`
	Score            int            `json:"score"`
	TotalQuestions   int            `json:"totalQuestions"`
	TimeSpentSeconds int            `json:"timeSpent"`
	Answers          map[string]int `json:"answers"`
	CompletedAt      time.Time      `json:"completedAt"`
}

// NewAttempt stamps an input with its identifier and completion time.
func NewAttempt(id string, in AttemptInput, completedAt time.Time) QuizAttempt {
	return QuizAttempt{
		ID:               id,
		UserID:           in.UserID,
		QuestionBankID:   in.QuestionBankID,
		Score:            in.Score,
		TotalQuestions:   in.TotalQuestions,
		TimeSpentSeconds: in.TimeSpentSeconds,
		Answers:          CopyAnswers(in.Answers),
		CompletedAt:      completedAt,
	}
}

// CopyAnswers returns an independent copy of an answers mapping.
func CopyAnswers(answers map[string]int) map[string]int {
	out := make(map[string]int, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	return out
}

// Catalog bundles the reference data a catalog store is built from.
type Catalog struct {
	Subjects  []Subject
	Banks     []QuestionBank
	Questions []Question
}

// QuestionResult is the per-question outcome shown after submission.
type QuestionResult struct {
	QuestionID    string   `json:"questionId"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	UserAnswer    *int     `json:"userAnswer,omitempty"`
	CorrectAnswer int      `json:"correctAnswer"`
	Correct       bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Result is the scored outcome of a completed session.
type Result struct {
	Attempt        QuizAttempt      `json:"attempt"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	Percentage     int              `json:"percentage"`
	TimeSpent      string           `json:"timeSpent"`
	Message        string           `json:"message"`
	Questions      []QuestionResult `json:"results"`
}
