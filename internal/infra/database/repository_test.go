package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/dsx-leads/internal/entity"
)

// Roda contra um Postgres real: TEST_DATABASE_URL=postgres://... go test ./...
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL não definido")
	}

	ctx := context.Background()
	db, err := Open(ctx, url, DefaultPool)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db))
	_, err = db.ExecContext(ctx, `TRUNCATE leads, admins`)
	require.NoError(t, err)
	return db
}

func TestLeadRepository(t *testing.T) {
	db := testDB(t)
	repo := NewLeadRepository(db)
	ctx := context.Background()

	ana := &entity.Lead{Name: "Ana Silva", Email: "ana@x.com", WhatsApp: "11912345678"}
	require.NoError(t, repo.Create(ctx, ana))
	assert.NotEmpty(t, ana.ID)
	assert.False(t, ana.CreatedAt.IsZero())

	bia := &entity.Lead{Name: "Bia Souza", Email: "bia@x.com", WhatsApp: "21987654321"}
	require.NoError(t, repo.Create(ctx, bia))

	t.Run("List is newest first", func(t *testing.T) {
		leads, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, bia.ID, leads[0].ID)
		assert.False(t, leads[0].Completed)
		assert.Nil(t, leads[0].CompletedAt)
	})

	t.Run("Complete only once", func(t *testing.T) {
		c := entity.Completion{ProfileCategory: entity.ProfileOther}
		require.NoError(t, repo.Complete(ctx, ana.ID, c))
		assert.ErrorIs(t, repo.Complete(ctx, ana.ID, c), entity.ErrLeadAlreadyCompleted)

		leads, err := repo.List(ctx)
		require.NoError(t, err)
		done := leads[1]
		assert.True(t, done.Completed)
		assert.NotNil(t, done.CompletedAt)
		assert.Equal(t, entity.ProfileOther, done.ProfileCategory)
		assert.Empty(t, done.Company)
	})

	t.Run("Unknown or malformed id", func(t *testing.T) {
		c := entity.Completion{ProfileCategory: entity.ProfileStudent}
		assert.ErrorIs(t, repo.Complete(ctx, "00000000-0000-0000-0000-000000000000", c), entity.ErrLeadNotFound)
		assert.ErrorIs(t, repo.Complete(ctx, "nao-e-uuid", c), entity.ErrLeadNotFound)
	})

	t.Run("Owner needs company and revenue", func(t *testing.T) {
		err := repo.Complete(ctx, bia.ID, entity.Completion{ProfileCategory: entity.ProfileOwner})
		assert.ErrorIs(t, err, entity.ErrIncompleteLead)
	})

	t.Run("Abandoned count", func(t *testing.T) {
		n, err := repo.CountAbandoned(ctx, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = repo.CountAbandoned(ctx, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestAdminRepository(t *testing.T) {
	db := testDB(t)
	repo := NewAdminRepository(db)
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "admin@dsx.com")
	assert.ErrorIs(t, err, entity.ErrAdminNotFound)

	a := &entity.Admin{Email: "Admin@DSX.com", PasswordHash: "h1"}
	require.NoError(t, repo.Upsert(ctx, a))
	require.NoError(t, repo.Upsert(ctx, &entity.Admin{Email: "admin@dsx.com", PasswordHash: "h2"}))

	got, err := repo.FindByEmail(ctx, "ADMIN@dsx.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, "h2", got.PasswordHash)
}
