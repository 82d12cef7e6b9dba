package application

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/either"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	repo "github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

type RegisterUserInput struct {
	Email                 string
	Password              string
	Name                  string
	AcceptedTerms         bool
	AcceptedPrivacyPolicy bool
	SystemID              string
	RoleID                string
}

// RegisterUserOutput is the registered user plus the verification token issued for it.
// The token is for the confirmation email only and is never serialized.
type RegisterUserOutput struct {
	User                       entity.UserView `json:"user"`
	VerificationToken          string          `json:"-"`
	VerificationTokenExpiresAt time.Time       `json:"-"`
}

type RegisterUser struct {
	Repo    repo.UserRepository
	Factory entity.UserFactory
}

func NewRegisterUser(r repo.UserRepository, f entity.UserFactory) *RegisterUser {
	return &RegisterUser{Repo: r, Factory: f}
}

// Execute registers a new user. A registered email yields Conflict before any
// validation runs; otherwise the factory's first failure is returned as is.
func (uc *RegisterUser) Execute(ctx context.Context, in RegisterUserInput) (either.Either[failure.Failure, RegisterUserOutput], error) {
	_, err := uc.Repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return either.Left[failure.Failure, RegisterUserOutput](failure.NewConflict()), nil
	case !errors.Is(err, repo.ErrNotFound):
		return either.Either[failure.Failure, RegisterUserOutput]{}, err
	}

	created, err := uc.Factory.Create(ctx, entity.CreateUserInput{
		Email:                 in.Email,
		Password:              in.Password,
		Name:                  in.Name,
		AcceptedTerms:         in.AcceptedTerms,
		AcceptedPrivacyPolicy: in.AcceptedPrivacyPolicy,
		SystemID:              in.SystemID,
		RoleID:                in.RoleID,
	})
	if err != nil {
		return either.Either[failure.Failure, RegisterUserOutput]{}, err
	}
	if f, ok := created.Left(); ok {
		return either.Left[failure.Failure, RegisterUserOutput](registrationFailure(f)), nil
	}
	u, _ := created.Right()

	stored, err := uc.Repo.Create(ctx, u)
	if errors.Is(err, repo.ErrDuplicateEmail) {
		// lost the race against a concurrent registration of the same email
		return either.Left[failure.Failure, RegisterUserOutput](failure.NewConflict()), nil
	}
	if errors.Is(err, repo.ErrUnknownRole) {
		return either.Left[failure.Failure, RegisterUserOutput](failure.NewInvalidData()), nil
	}
	if err != nil {
		return either.Either[failure.Failure, RegisterUserOutput]{}, err
	}

	return either.Right[failure.Failure](RegisterUserOutput{
		User:                       u.View(),
		VerificationToken:          stored.VerificationToken.Value,
		VerificationTokenExpiresAt: stored.VerificationToken.ExpiresAt,
	}), nil
}

func registrationFailure(f failure.Failure) failure.Failure {
	switch f.Kind {
	case failure.InvalidTermsPolicy, failure.InvalidEmail, failure.InvalidPassword:
		return f
	default:
		return failure.NewInvalidData()
	}
}
