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

const auditEmailVerified = "Email verified successfully"

type VerifyEmail struct {
	Repo repo.UserRepository
	Now  func() time.Time
}

func NewVerifyEmail(r repo.UserRepository) *VerifyEmail {
	return &VerifyEmail{Repo: r}
}

// Execute marks the user's email as verified when token matches the unexpired
// token on record, and consumes the token. Unknown ids, expired tokens,
// mismatches and already consumed tokens all yield InvalidToken.
func (uc *VerifyEmail) Execute(ctx context.Context, id, token string) (either.Either[failure.Failure, bool], error) {
	stored, err := uc.Repo.FindVerificationToken(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return either.Left[failure.Failure, bool](failure.NewInvalidToken()), nil
	}
	if err != nil {
		return either.Either[failure.Failure, bool]{}, err
	}

	now := nowFrom(uc.Now)
	if !entity.TokenValid(stored.Value, &stored.ExpiresAt, token, now) {
		return either.Left[failure.Failure, bool](failure.NewInvalidToken()), nil
	}

	patch := repo.UserPatch{ID: id, EmailVerified: ptr(true), ConsumeToken: true, UpdatedAt: &now}
	if err := uc.Repo.Update(ctx, patch, auditEmailVerified); err != nil {
		return either.Either[failure.Failure, bool]{}, err
	}
	return either.Right[failure.Failure](true), nil
}
