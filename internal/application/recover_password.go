package application

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/either"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	repo "github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

// RecoveryOutput is what the recovery email needs.
type RecoveryOutput struct {
	UserID    string
	Name      string
	Email     string
	Token     string
	ExpiresAt *time.Time
}

type RecoverPassword struct {
	Repo repo.UserRepository
}

func NewRecoverPassword(r repo.UserRepository) *RecoverPassword {
	return &RecoverPassword{Repo: r}
}

// Execute looks the user up by email and returns the token currently on
// record. It never issues a token.
func (uc *RecoverPassword) Execute(ctx context.Context, email string) (either.Either[failure.Failure, RecoveryOutput], error) {
	u, err := uc.Repo.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return either.Left[failure.Failure, RecoveryOutput](failure.NewUserNotFound()), nil
	}
	if err != nil {
		return either.Either[failure.Failure, RecoveryOutput]{}, err
	}

	p := u.Props()
	return either.Right[failure.Failure](RecoveryOutput{
		UserID:    p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Token:     p.EmailVerificationToken,
		ExpiresAt: p.EmailVerificationTokenExpiresAt,
	}), nil
}
