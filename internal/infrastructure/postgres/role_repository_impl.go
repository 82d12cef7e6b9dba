package postgres

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-ddd-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-registration/internal/domain/repository"
)

type RoleRepository struct {
	db DB
}

func NewRoleRepository(db DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// EnsureRole returns the role called name, creating it when missing.
func (r *RoleRepository) EnsureRole(ctx context.Context, name string) (*entity.Role, error) {
	role := &entity.Role{}
	err := r.db.QueryRow(ctx, `
		INSERT INTO roles (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id::text, name, created_at, updated_at
	`, name).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert role %s: %w", name, err)
	}
	return role, nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
