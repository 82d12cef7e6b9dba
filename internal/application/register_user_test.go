package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/either"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/failure"
	repo "github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

func requireLeft[R any](t *testing.T, e either.Either[failure.Failure, R]) failure.Failure {
	t.Helper()
	f, ok := e.Left()
	require.True(t, ok, "expected a failure")
	return f
}

func TestRegisterUser_Success(t *testing.T) {
	ctx := context.Background()
	r := newMockUserRepository(t)
	exp := testNow.Add(entity.VerificationTokenTTL)

	r.On("FindByEmail", ctx, "ada@example.com").Return(nil, repo.ErrNotFound)
	r.On("Create", ctx, mock.MatchedBy(func(u *entity.User) bool {
		return u.ID() == "u-1" && u.PasswordForPersistence() == "hashed:Abcdef1!"
	})).Return(&repo.CreatedUser{
		ID:                "u-1",
		Email:             "ada@example.com",
		VerificationToken: repo.VerificationToken{Value: "123456", ExpiresAt: exp},
	}, nil)

	res, err := NewRegisterUser(r, testFactory()).Execute(ctx, validRegistration())
	require.NoError(t, err)
	out, ok := res.Right()
	require.True(t, ok)

	assert.Equal(t, "u-1", out.User.ID)
	assert.Equal(t, "ada@example.com", out.User.Email)
	assert.Equal(t, testNow, out.User.CreatedAt)
	assert.Nil(t, out.User.UpdatedAt)
	assert.False(t, out.User.EmailVerified)
	assert.Equal(t, "123456", out.VerificationToken)
	assert.Equal(t, exp, out.VerificationTokenExpiresAt)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "123456")
	assert.NotContains(t, string(b), "hashed:")
}

func TestRegisterUser_ExistingEmailConflictsBeforeValidation(t *testing.T) {
	ctx := context.Background()
	r := newMockUserRepository(t)
	r.On("FindByEmail", ctx, "ada@example.com").Return(storedUser("", nil, false), nil)

	in := validRegistration()
	in.AcceptedTerms = false
	in.Password = "weak"

	res, err := NewRegisterUser(r, testFactory()).Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, failure.Conflict, requireLeft(t, res).Kind)
	r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterUser_ValidationFailures(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*RegisterUserInput)
		kind  failure.Kind
		email string
	}{
		{"terms not accepted", func(in *RegisterUserInput) { in.AcceptedTerms = false }, failure.InvalidTermsPolicy, ""},
		{"privacy not accepted", func(in *RegisterUserInput) { in.AcceptedPrivacyPolicy = false }, failure.InvalidTermsPolicy, ""},
		{"terms win over bad email", func(in *RegisterUserInput) { in.AcceptedTerms = false; in.Email = "nope" }, failure.InvalidTermsPolicy, ""},
		{"bad email", func(in *RegisterUserInput) { in.Email = "nope" }, failure.InvalidEmail, "nope"},
		{"email wins over weak password", func(in *RegisterUserInput) { in.Email = "nope"; in.Password = "x" }, failure.InvalidEmail, "nope"},
		{"weak password", func(in *RegisterUserInput) { in.Password = "abcdefg1!" }, failure.InvalidPassword, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			in := validRegistration()
			tt.edit(&in)

			r := newMockUserRepository(t)
			r.On("FindByEmail", ctx, in.Email).Return(nil, repo.ErrNotFound)

			res, err := NewRegisterUser(r, testFactory()).Execute(ctx, in)
			require.NoError(t, err)
			f := requireLeft(t, res)
			assert.Equal(t, tt.kind, f.Kind)
			assert.Equal(t, tt.email, f.Email)
			r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterUser_DuplicateFromStorageIsConflict(t *testing.T) {
	ctx := context.Background()
	r := newMockUserRepository(t)
	r.On("FindByEmail", ctx, "ada@example.com").Return(nil, repo.ErrNotFound)
	r.On("Create", ctx, mock.Anything).Return(nil, repo.ErrDuplicateEmail)

	res, err := NewRegisterUser(r, testFactory()).Execute(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, failure.Conflict, requireLeft(t, res).Kind)
}

func TestRegisterUser_UnknownRoleIsInvalidData(t *testing.T) {
	ctx := context.Background()
	r := newMockUserRepository(t)
	r.On("FindByEmail", ctx, "ada@example.com").Return(nil, repo.ErrNotFound)
	r.On("Create", ctx, mock.Anything).Return(nil, repo.ErrUnknownRole)

	in := validRegistration()
	in.RoleID = "9d8c7b6a-5f4e-4d3c-2b1a-0f9e8d7c6b5a"
	res, err := NewRegisterUser(r, testFactory()).Execute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, failure.InvalidData, requireLeft(t, res).Kind)
}

func TestRegisterUser_InfrastructureErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		r := newMockUserRepository(t)
		r.On("FindByEmail", ctx, "ada@example.com").Return(nil, assert.AnError)

		_, err := NewRegisterUser(r, testFactory()).Execute(ctx, validRegistration())
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("create", func(t *testing.T) {
		r := newMockUserRepository(t)
		r.On("FindByEmail", ctx, "ada@example.com").Return(nil, repo.ErrNotFound)
		r.On("Create", ctx, mock.Anything).Return(nil, assert.AnError)

		_, err := NewRegisterUser(r, testFactory()).Execute(ctx, validRegistration())
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("hash", func(t *testing.T) {
		r := newMockUserRepository(t)
		r.On("FindByEmail", ctx, "ada@example.com").Return(nil, repo.ErrNotFound)
		f := testFactory()
		f.Hasher = prefixHasher{err: errors.New("bcrypt: out of memory")}

		_, err := NewRegisterUser(r, f).Execute(ctx, validRegistration())
		assert.EqualError(t, err, "bcrypt: out of memory")
		r.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestRegistrationFailureMapsUnknownKindsToInvalidData(t *testing.T) {
	assert.Equal(t, failure.InvalidData, registrationFailure(failure.NewInvalidToken()).Kind)
	assert.Equal(t, failure.InvalidPassword, registrationFailure(failure.NewInvalidPassword()).Kind)
}
