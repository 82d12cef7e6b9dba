package entity

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/either"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/policy"
)

// VerificationTokenTTL is how long an email verification token stays valid.
const VerificationTokenTTL = 15 * time.Minute

// PasswordHasher hashes and compares passwords. Compare must be constant time.
type PasswordHasher interface {
	Hash(ctx context.Context, plain string) (string, error)
	Compare(ctx context.Context, plain, hash string) (bool, error)
}

// IDGenerator issues user identifiers.
type IDGenerator interface {
	NewID() string
}

// UserProps is everything known about a user except the password hash.
type UserProps struct {
	ID                    string
	Email                 string
	Name                  string
	CreatedAt             time.Time
	UpdatedAt             *time.Time
	AcceptedTerms         bool
	AcceptedPrivacyPolicy bool
	SystemID              string
	RoleID                string
	EmailVerified         bool

	EmailVerificationToken          string
	EmailVerificationTokenExpiresAt *time.Time
}

// User is the aggregate root for the user domain.
// The password hash is only reachable through PasswordForPersistence.
type User struct {
	props        UserProps
	passwordHash string
}

// Restore rebuilds a persisted user. Only the persistence layer should call it.
func Restore(props UserProps, passwordHash string) *User {
	return &User{props: props, passwordHash: passwordHash}
}

// Props returns a copy of the user's fields.
func (u *User) Props() UserProps { return u.props }

func (u *User) ID() string           { return u.props.ID }
func (u *User) Email() string        { return u.props.Email }
func (u *User) Name() string         { return u.props.Name }
func (u *User) CreatedAt() time.Time { return u.props.CreatedAt }

func (u *User) UpdatedAt() *time.Time { return u.props.UpdatedAt }

// PasswordForPersistence exposes the hash to the storage boundary.
func (u *User) PasswordForPersistence() string { return u.passwordHash }

// SetPassword replaces the stored hash.
func (u *User) SetPassword(hash string, now time.Time) {
	u.passwordHash = hash
	u.touch(now)
}

// AcceptTermsAndPrivacy records acceptance of both documents. Acceptance cannot be revoked.
func (u *User) AcceptTermsAndPrivacy(now time.Time) {
	u.props.AcceptedTerms = true
	u.props.AcceptedPrivacyPolicy = true
	u.touch(now)
}

func (u *User) touch(now time.Time) {
	t := now
	u.props.UpdatedAt = &t
}

// ValidateCredentials compares plain against the stored hash.
func (u *User) ValidateCredentials(ctx context.Context, plain string, hasher PasswordHasher) (bool, error) {
	return hasher.Compare(ctx, plain, u.passwordHash)
}

// VerificationTokenValid reports whether token matches the one on record and
// has not expired at now.
func (u *User) VerificationTokenValid(token string, now time.Time) bool {
	return TokenValid(u.props.EmailVerificationToken, u.props.EmailVerificationTokenExpiresAt, token, now)
}

// TokenValid is the token rule shared by verification and password reset:
// a stored value must exist, its expiry must not be before now, and the
// supplied token must be byte-for-byte equal.
func TokenValid(stored string, expiresAt *time.Time, supplied string, now time.Time) bool {
	if stored == "" || expiresAt == nil {
		return false
	}
	if expiresAt.Before(now) {
		return false
	}
	return stored == supplied
}

// CreateUserInput is the data needed to register a user.
type CreateUserInput struct {
	Email                 string
	Password              string
	Name                  string
	AcceptedTerms         bool
	AcceptedPrivacyPolicy bool
	SystemID              string
	RoleID                string
}

// UserFactory builds new users from raw input.
type UserFactory struct {
	Emails policy.EmailValidator
	Hasher PasswordHasher
	IDs    IDGenerator
	Now    func() time.Time
}

// Create validates in, hashes the password and assigns identity.
// Terms and privacy acceptance are checked first, then email format, then
// password strength. An error is only returned when hashing fails.
func (f UserFactory) Create(ctx context.Context, in CreateUserInput) (either.Either[failure.Failure, *User], error) {
	if !in.AcceptedTerms || !in.AcceptedPrivacyPolicy {
		return either.Left[failure.Failure, *User](failure.NewInvalidTermsPolicy()), nil
	}
	if !f.Emails.IsValid(in.Email) {
		return either.Left[failure.Failure, *User](failure.NewInvalidEmail(in.Email)), nil
	}
	if !policy.IsPasswordStrong(in.Password) {
		return either.Left[failure.Failure, *User](failure.NewInvalidPassword()), nil
	}

	hash, err := f.Hasher.Hash(ctx, in.Password)
	if err != nil {
		return either.Either[failure.Failure, *User]{}, err
	}

	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	u := &User{
		props: UserProps{
			ID:                    f.IDs.NewID(),
			Email:                 in.Email,
			Name:                  in.Name,
			CreatedAt:             now(),
			AcceptedTerms:         in.AcceptedTerms,
			AcceptedPrivacyPolicy: in.AcceptedPrivacyPolicy,
			SystemID:              in.SystemID,
			RoleID:                in.RoleID,
		},
		passwordHash: hash,
	}
	return either.Right[failure.Failure](u), nil
}
