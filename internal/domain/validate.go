package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Input checks that every required field is present and returns the
// validated AttemptInput.
func (r AttemptRequest) Input() (AttemptInput, error) {
	if err := validateStruct(r); err != nil {
		return AttemptInput{}, err
	}
	in := AttemptInput{
		UserID:           r.UserID,
		QuestionBankID:   r.QuestionBankID,
		Score:            *r.Score,
		TotalQuestions:   *r.TotalQuestions,
		TimeSpentSeconds: *r.TimeSpentSeconds,
		Answers:          r.Answers,
	}
	if err := in.Validate(); err != nil {
		return AttemptInput{}, err
	}
	return in, nil
}

// Validate rejects attempts with missing or malformed fields.
func (in AttemptInput) Validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if len(in.Answers) > in.TotalQuestions {
		return fmt.Errorf("%w: answers:more entries than questions", ErrValidation)
	}
	return nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, fe.Field()+":"+fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
}

// ValidateQuestion checks a question's correct answer indexes its options.
func ValidateQuestion(q Question) error {
	if q.ID == "" || q.QuestionBankID == "" {
		return fmt.Errorf("question %q: missing id or bank", q.ID)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("question %q: no options", q.ID)
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("question %q: correct answer %d out of range", q.ID, q.CorrectAnswer)
	}
	return nil
}
