package domain

import "errors"

var (
	// ErrSubjectNotFound is returned when a subject id does not exist.
	ErrSubjectNotFound = errors.New("subject not found")
	// ErrQuestionBankNotFound is returned when a question bank id does not exist.
	ErrQuestionBankNotFound = errors.New("question bank not found")
	// ErrSessionNotFound is returned when a quiz session has not been started or was discarded.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrEmptyBank indicates a question bank resolved to zero questions.
	ErrEmptyBank = errors.New("question bank has no questions")
	// ErrInvalidTimeLimit indicates a question bank without a positive time limit.
	ErrInvalidTimeLimit = errors.New("question bank time limit must be positive")
	// ErrMissingFilter is returned when a listing is requested without its required filters.
	ErrMissingFilter = errors.New("subjectId and classLevel are required")
	// ErrValidation wraps every malformed attempt submission.
	ErrValidation = errors.New("invalid quiz attempt data")
	// ErrUnknownQuestion indicates an answer referenced a question outside the session.
	ErrUnknownQuestion = errors.New("question not part of this session")
	// ErrInvalidOption indicates an answer index outside the question's options.
	ErrInvalidOption = errors.New("option index out of range")
)

// IsNotFound reports whether err denotes a missing catalog entity or session.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrQuestionBankNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}
