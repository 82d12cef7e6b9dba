package failure

import "errors"

// Kind enumerates the expected outcomes of a business rule violation.
type Kind int

const (
	InvalidData Kind = iota
	Conflict
	InvalidEmail
	InvalidPassword
	InvalidTermsPolicy
	InvalidToken
	UserNotFound
)

func (k Kind) String() string {
	switch k {
	case Conflict:
		return "conflict"
	case InvalidEmail:
		return "invalid_email"
	case InvalidPassword:
		return "invalid_password"
	case InvalidTermsPolicy:
		return "invalid_terms_policy"
	case InvalidToken:
		return "invalid_token"
	case UserNotFound:
		return "user_not_found"
	default:
		return "invalid_data"
	}
}

// Failure is a domain error carried as data. Email is only set for InvalidEmail.
type Failure struct {
	Kind  Kind
	Email string
}

func (f Failure) Error() string {
	switch f.Kind {
	case Conflict:
		return "User already exists. Please use a different email address."
	case InvalidEmail:
		return "The email " + f.Email + " is invalid."
	case InvalidPassword:
		return "The password must contain lowercase and uppercase letters, a digit, a special character and be at least 8 characters long."
	case InvalidTermsPolicy:
		return "You must accept the terms and privacy policy."
	case InvalidToken:
		return "The provided token is invalid or has expired."
	case UserNotFound:
		return "You will need to register before you can log in."
	default:
		return "The provided data is invalid. Please check the input and try again."
	}
}

func NewInvalidData() Failure              { return Failure{Kind: InvalidData} }
func NewConflict() Failure                 { return Failure{Kind: Conflict} }
func NewInvalidEmail(email string) Failure { return Failure{Kind: InvalidEmail, Email: email} }
func NewInvalidPassword() Failure          { return Failure{Kind: InvalidPassword} }
func NewInvalidTermsPolicy() Failure       { return Failure{Kind: InvalidTermsPolicy} }
func NewInvalidToken() Failure             { return Failure{Kind: InvalidToken} }
func NewUserNotFound() Failure             { return Failure{Kind: UserNotFound} }

// As reports whether err is (or wraps) a Failure.
func As(err error) (Failure, bool) {
	var f Failure
	if errors.As(err, &f) {
		return f, true
	}
	return Failure{}, false
}

// Is reports whether err is a Failure of the given kind.
func Is(err error, kind Kind) bool {
	f, ok := As(err)
	return ok && f.Kind == kind
}
