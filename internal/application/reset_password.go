package application

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/either"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/policy"
	repo "github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

const auditPasswordUpdated = "Password updated successfully"

type ResetPasswordInput struct {
	Email       string
	Token       string
	NewPassword string
}

type ResetPassword struct {
	Repo   repo.UserRepository
	Hasher entity.PasswordHasher
	Now    func() time.Time
}

func NewResetPassword(r repo.UserRepository, h entity.PasswordHasher) *ResetPassword {
	return &ResetPassword{Repo: r, Hasher: h}
}

// Execute finishes the recovery handshake: the token sent by RecoverPassword
// authorizes replacing the password once; the token is consumed in the same
// write. Checks run user, token, then strength.
func (uc *ResetPassword) Execute(ctx context.Context, in ResetPasswordInput) (either.Either[failure.Failure, bool], error) {
	u, err := uc.Repo.FindByEmail(ctx, in.Email)
	if errors.Is(err, repo.ErrNotFound) {
		return either.Left[failure.Failure, bool](failure.NewUserNotFound()), nil
	}
	if err != nil {
		return either.Either[failure.Failure, bool]{}, err
	}

	now := nowFrom(uc.Now)
	if !u.VerificationTokenValid(in.Token, now) {
		return either.Left[failure.Failure, bool](failure.NewInvalidToken()), nil
	}
	if !policy.IsPasswordStrong(in.NewPassword) {
		return either.Left[failure.Failure, bool](failure.NewInvalidPassword()), nil
	}

	hash, err := uc.Hasher.Hash(ctx, in.NewPassword)
	if err != nil {
		return either.Either[failure.Failure, bool]{}, err
	}
	u.SetPassword(hash, now)

	patch := repo.UserPatch{
		ID:           u.ID(),
		PasswordHash: ptr(u.PasswordForPersistence()),
		ConsumeToken: true,
		UpdatedAt:    u.UpdatedAt(),
	}
	if err := uc.Repo.Update(ctx, patch, auditPasswordUpdated); err != nil {
		return either.Either[failure.Failure, bool]{}, err
	}
	return either.Right[failure.Failure](true), nil
}
