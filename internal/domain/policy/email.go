package policy

import "github.com/go-playground/validator/v10"

// EmailValidator checks the format of an email address. Implementations must be
// pure and total over any input.
type EmailValidator interface {
	IsValid(email string) bool
}

type tagEmailValidator struct {
	v *validator.Validate
}

// NewEmailValidator returns an EmailValidator backed by validator's email rule.
func NewEmailValidator() EmailValidator {
	return tagEmailValidator{v: validator.New()}
}

func (t tagEmailValidator) IsValid(email string) bool {
	return t.v.Var(email, "required,email") == nil
}
