package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
)

var (
	// ErrNotFound is returned when the requested user or token does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when storage rejects a second user with the same email.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUnknownRole is returned when a user is linked to a role id that does not exist.
	ErrUnknownRole = errors.New("unknown role")
)

// TokenGenerator issues email verification tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

// VerificationToken is a stored token and the instant it stops being valid.
type VerificationToken struct {
	Value     string
	ExpiresAt time.Time
}

// CreatedUser is what storage reports back after inserting a user.
type CreatedUser struct {
	ID                string
	Email             string
	VerificationToken VerificationToken
}

// UserPatch lists the fields an update changes. Nil fields are left alone.
// ConsumeToken removes the verification token and its expiry, so a used
// token cannot authorize anything again.
type UserPatch struct {
	ID                    string
	PasswordHash          *string
	AcceptedTerms         *bool
	AcceptedPrivacyPolicy *bool
	EmailVerified         *bool
	ConsumeToken          bool
	UpdatedAt             *time.Time
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.PasswordHash == nil && p.AcceptedTerms == nil && p.AcceptedPrivacyPolicy == nil &&
		p.EmailVerified == nil && !p.ConsumeToken && p.UpdatedAt == nil
}

// UserRepository defines the persistence operations the user domain needs.
// Lookups return ErrNotFound when nothing matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// Create stores u together with a freshly issued verification token.
	Create(ctx context.Context, u *entity.User) (*CreatedUser, error)
	// Update applies patch and records description in the audit log.
	Update(ctx context.Context, patch UserPatch, description string) error
	FindVerificationToken(ctx context.Context, id string) (*VerificationToken, error)
	// ReissueVerificationToken replaces the token on record with a new one.
	ReissueVerificationToken(ctx context.Context, id string) (*VerificationToken, error)
	Delete(ctx context.Context, id string) error
}

// RoleRepository keeps the set of roles users can be linked to.
type RoleRepository interface {
	EnsureRole(ctx context.Context, name string) (*entity.Role, error)
}
