package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

// DB is the subset of *pgxpool.Pool the repositories use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const selectUser = `
	SELECT u.id::text, u.email, u.password_hash, u.name, u.created_at, u.updated_at,
	       u.accepted_terms, u.accepted_privacy_policy, u.system_id,
	       COALESCE(ur.role_id::text, ''), u.email_verified,
	       COALESCE(u.email_verification_token, ''), u.email_verification_token_expires_at
	FROM users u
	LEFT JOIN LATERAL (
		SELECT role_id FROM user_roles WHERE user_id = u.id ORDER BY created_at LIMIT 1
	) ur ON true
`

type UserRepository struct {
	db     DB
	tokens repository.TokenGenerator
	ttl    time.Duration
	now    func() time.Time
}

func NewUserRepository(db DB, tokens repository.TokenGenerator, ttl time.Duration) *UserRepository {
	if ttl <= 0 {
		ttl = entity.VerificationTokenTTL
	}
	return &UserRepository{db: db, tokens: tokens, ttl: ttl, now: time.Now}
}

func (r *UserRepository) issueToken() (repository.VerificationToken, error) {
	v, err := r.tokens.NewToken()
	if err != nil {
		return repository.VerificationToken{}, fmt.Errorf("generate verification token: %w", err)
	}
	return repository.VerificationToken{Value: v, ExpiresAt: r.now().UTC().Add(r.ttl)}, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) (*repository.CreatedUser, error) {
	tok, err := r.issueToken()
	if err != nil {
		return nil, err
	}
	p := u.Props()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, name, accepted_terms, accepted_privacy_policy,
		                   system_id, email_verification_token, email_verification_token_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email) DO NOTHING
		RETURNING id::text
	`, p.ID, p.Email, u.PasswordForPersistence(), p.Name, p.AcceptedTerms, p.AcceptedPrivacyPolicy,
		p.SystemID, tok.Value, tok.ExpiresAt, p.CreatedAt).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		return nil, repository.ErrDuplicateEmail
	case err != nil:
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if p.RoleID != "" {
		_, err = tx.Exec(ctx, `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`, id, p.RoleID)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = $2
		`, id, entity.RoleUser)
	}
	if isForeignKeyViolation(err) {
		return nil, repository.ErrUnknownRole
	}
	if err != nil {
		return nil, fmt.Errorf("link user role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create user: %w", err)
	}
	return &repository.CreatedUser{ID: id, Email: p.Email, VerificationToken: tok}, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, selectUser+`WHERE u.email = $1`, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, selectUser+`WHERE u.id = $1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg string) (*entity.User, error) {
	var (
		p    entity.UserProps
		hash string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.Email, &hash, &p.Name, &p.CreatedAt, &p.UpdatedAt,
		&p.AcceptedTerms, &p.AcceptedPrivacyPolicy, &p.SystemID,
		&p.RoleID, &p.EmailVerified,
		&p.EmailVerificationToken, &p.EmailVerificationTokenExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return entity.Restore(p, hash), nil
}

// Update applies the non-nil fields of patch and writes one audit row, in one transaction.
func (r *UserRepository) Update(ctx context.Context, patch repository.UserPatch, description string) error {
	if patch.Empty() {
		return nil
	}
	if !validID(patch.ID) {
		return repository.ErrNotFound
	}
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	if patch.AcceptedTerms != nil {
		add("accepted_terms", *patch.AcceptedTerms)
	}
	if patch.AcceptedPrivacyPolicy != nil {
		add("accepted_privacy_policy", *patch.AcceptedPrivacyPolicy)
	}
	if patch.EmailVerified != nil {
		add("email_verified", *patch.EmailVerified)
	}
	if patch.ConsumeToken {
		sets = append(sets, "email_verification_token = NULL", "email_verification_token_expires_at = NULL")
	}
	if patch.UpdatedAt != nil {
		add("updated_at", *patch.UpdatedAt)
	}
	args = append(args, patch.ID)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update user: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `INSERT INTO audit_logs (user_id, description) VALUES ($1, $2)`, patch.ID, description); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update user: %w", err)
	}
	return nil
}

// FindVerificationToken returns ErrNotFound both for unknown users and for
// users with no token on record.
func (r *UserRepository) FindVerificationToken(ctx context.Context, id string) (*repository.VerificationToken, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	var (
		value string
		exp   *time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(email_verification_token, ''), email_verification_token_expires_at
		FROM users WHERE id = $1
	`, id).Scan(&value, &exp)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select verification token: %w", err)
	}
	if value == "" || exp == nil {
		return nil, repository.ErrNotFound
	}
	return &repository.VerificationToken{Value: value, ExpiresAt: *exp}, nil
}

func (r *UserRepository) ReissueVerificationToken(ctx context.Context, id string) (*repository.VerificationToken, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	tok, err := r.issueToken()
	if err != nil {
		return nil, err
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET email_verification_token = $1, email_verification_token_expires_at = $2
		WHERE id = $3
	`, tok.Value, tok.ExpiresAt, id)
	if err != nil {
		return nil, fmt.Errorf("reissue verification token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}
	return &tok, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// validID reports whether id can match a users.id UUID. Anything else cannot
// exist, so callers answer ErrNotFound without a round trip.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	return hasCode(err, pgerrcode.UniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

var _ repository.UserRepository = (*UserRepository)(nil)
