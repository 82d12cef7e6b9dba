package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	repo "github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-registration/pkg/mailer"
)

type mockUserRepository struct {
	mock.Mock
}

func newMockUserRepository(t *testing.T) *mockUserRepository {
	m := &mockUserRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, u *entity.User) (*repo.CreatedUser, error) {
	args := m.Called(ctx, u)
	c, _ := args.Get(0).(*repo.CreatedUser)
	return c, args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, patch repo.UserPatch, description string) error {
	return m.Called(ctx, patch, description).Error(0)
}

func (m *mockUserRepository) FindVerificationToken(ctx context.Context, id string) (*repo.VerificationToken, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*repo.VerificationToken)
	return v, args.Error(1)
}

func (m *mockUserRepository) ReissueVerificationToken(ctx context.Context, id string) (*repo.VerificationToken, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*repo.VerificationToken)
	return v, args.Error(1)
}

func (m *mockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockEmailSender struct {
	mock.Mock
}

func newMockEmailSender(t *testing.T) *mockEmailSender {
	m := &mockEmailSender{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockEmailSender) Send(ctx context.Context, job mailer.EmailJob) error {
	return m.Called(ctx, job).Error(0)
}

type mockVerifiedCache struct {
	mock.Mock
}

func newMockVerifiedCache(t *testing.T) *mockVerifiedCache {
	m := &mockVerifiedCache{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockVerifiedCache) Get(ctx context.Context, userID string) (bool, bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *mockVerifiedCache) Set(ctx context.Context, userID string, verified bool) error {
	return m.Called(ctx, userID, verified).Error(0)
}

type mockUserIndexer struct {
	mock.Mock
}

func newMockUserIndexer(t *testing.T) *mockUserIndexer {
	m := &mockUserIndexer{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockUserIndexer) IndexUser(ctx context.Context, id string, doc any) error {
	return m.Called(ctx, id, doc).Error(0)
}

// prefixHasher "hashes" by prefixing, so stored values are predictable.
type prefixHasher struct{ err error }

func (h prefixHasher) Hash(_ context.Context, plain string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + plain, nil
}

func (h prefixHasher) Compare(_ context.Context, plain, hash string) (bool, error) {
	return hash == "hashed:"+plain, nil
}

type atEmail struct{}

func (atEmail) IsValid(email string) bool { return strings.Contains(email, "@") }

type fixedID string

func (f fixedID) NewID() string { return string(f) }

var testNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func testFactory() entity.UserFactory {
	return entity.UserFactory{Emails: atEmail{}, Hasher: prefixHasher{}, IDs: fixedID("u-1"), Now: fixedClock}
}

// storedUser rehydrates a user the way the repository would.
func storedUser(token string, expiresAt *time.Time, verified bool) *entity.User {
	return entity.Restore(entity.UserProps{
		ID:                              "u-1",
		Email:                           "ada@example.com",
		Name:                            "Ada",
		CreatedAt:                       testNow.Add(-time.Hour),
		AcceptedTerms:                   true,
		AcceptedPrivacyPolicy:           true,
		SystemID:                        "sys-1",
		EmailVerified:                   verified,
		EmailVerificationToken:          token,
		EmailVerificationTokenExpiresAt: expiresAt,
	}, "hashed:Old@pass1")
}

func validRegistration() RegisterUserInput {
	return RegisterUserInput{
		Email:                 "ada@example.com",
		Password:              "Abcdef1!",
		Name:                  "Ada",
		AcceptedTerms:         true,
		AcceptedPrivacyPolicy: true,
		SystemID:              "sys-1",
	}
}

// memUserRepository holds a single user and applies patches to it, for flows
// that have to see their own writes.
type memUserRepository struct {
	props  entity.UserProps
	hash   string
	audits []string
}

var errUnsupported = errors.New("not supported by memUserRepository")

func newMemUserRepository(u *entity.User) *memUserRepository {
	return &memUserRepository{props: u.Props(), hash: u.PasswordForPersistence()}
}

func (m *memUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if email != m.props.Email {
		return nil, repo.ErrNotFound
	}
	return entity.Restore(m.props, m.hash), nil
}

func (m *memUserRepository) FindByID(_ context.Context, id string) (*entity.User, error) {
	if id != m.props.ID {
		return nil, repo.ErrNotFound
	}
	return entity.Restore(m.props, m.hash), nil
}

func (m *memUserRepository) Create(context.Context, *entity.User) (*repo.CreatedUser, error) {
	return nil, errUnsupported
}

func (m *memUserRepository) Update(_ context.Context, patch repo.UserPatch, description string) error {
	if patch.ID != m.props.ID {
		return repo.ErrNotFound
	}
	if patch.PasswordHash != nil {
		m.hash = *patch.PasswordHash
	}
	if patch.EmailVerified != nil {
		m.props.EmailVerified = *patch.EmailVerified
	}
	if patch.ConsumeToken {
		m.props.EmailVerificationToken = ""
		m.props.EmailVerificationTokenExpiresAt = nil
	}
	if patch.UpdatedAt != nil {
		m.props.UpdatedAt = patch.UpdatedAt
	}
	m.audits = append(m.audits, description)
	return nil
}

func (m *memUserRepository) FindVerificationToken(_ context.Context, id string) (*repo.VerificationToken, error) {
	if id != m.props.ID || m.props.EmailVerificationToken == "" || m.props.EmailVerificationTokenExpiresAt == nil {
		return nil, repo.ErrNotFound
	}
	return &repo.VerificationToken{Value: m.props.EmailVerificationToken, ExpiresAt: *m.props.EmailVerificationTokenExpiresAt}, nil
}

func (m *memUserRepository) ReissueVerificationToken(context.Context, string) (*repo.VerificationToken, error) {
	return nil, errUnsupported
}

func (m *memUserRepository) Delete(context.Context, string) error { return errUnsupported }
