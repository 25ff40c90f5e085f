package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (name, email, whatsapp)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.DB.QueryRowContext(ctx, query, lead.Name, lead.Email, lead.WhatsApp).
		Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		return fmt.Errorf("erro ao inserir lead: %w", err)
	}
	return nil
}

// Complete grava a segunda fase. Um lead já concluído nunca é reaberto.
func (r *LeadRepository) Complete(ctx context.Context, id string, c entity.Completion) error {
	if err := c.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE leads
		SET completed = TRUE,
			completed_at = NOW(),
			profile_category = $2,
			company = $3,
			revenue_bracket = $4
		WHERE id = $1 AND completed = FALSE
	`

	res, err := r.DB.ExecContext(ctx, query,
		id,
		string(c.ProfileCategory),
		nullString(c.Company),
		nullString(string(c.RevenueBracket)),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return entity.ErrLeadNotFound
		}
		return fmt.Errorf("erro ao concluir lead: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var completed bool
	err = r.DB.QueryRowContext(ctx, `SELECT completed FROM leads WHERE id = $1`, id).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	if err != nil {
		return err
	}
	return entity.ErrLeadAlreadyCompleted
}

func (r *LeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	query := `
		SELECT id, name, email, whatsapp, profile_category, company, revenue_bracket,
			created_at, completed, completed_at
		FROM leads
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		var l entity.Lead
		var profile, company, revenue sql.NullString
		var completedAt sql.NullTime

		if err := rows.Scan(&l.ID, &l.Name, &l.Email, &l.WhatsApp, &profile, &company, &revenue,
			&l.CreatedAt, &l.Completed, &completedAt); err != nil {
			return nil, err
		}

		l.ProfileCategory = entity.ProfileCategory(profile.String)
		l.Company = company.String
		l.RevenueBracket = entity.RevenueBracket(revenue.String)
		if completedAt.Valid {
			t := completedAt.Time
			l.CompletedAt = &t
		}
		leads = append(leads, &l)
	}

	return leads, rows.Err()
}

// CountAbandoned conta leads parciais criados antes de cutoff.
func (r *LeadRepository) CountAbandoned(ctx context.Context, cutoff time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads WHERE completed = FALSE AND created_at < $1`, cutoff,
	).Scan(&n)
	return n, err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
