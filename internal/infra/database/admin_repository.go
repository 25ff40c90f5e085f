package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

type AdminRepository struct {
	DB *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{DB: db}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	var a entity.Admin
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert cria o administrador ou troca a senha de um existente.
func (r *AdminRepository) Upsert(ctx context.Context, a *entity.Admin) error {
	query := `
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email)
		DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, created_at
	`
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	return r.DB.QueryRowContext(ctx, query, a.Email, a.PasswordHash).Scan(&a.ID, &a.CreatedAt)
}
