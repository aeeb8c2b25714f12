package gallery

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visualink/studio/internal/apperr"
)

var columns = []string{"id", "url", "title", "category", "created_at"}

func TestRepositoryList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	newer := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)
	mock.ExpectQuery(`SELECT (.+) FROM gallery ORDER BY created_at DESC, id DESC`).
		WillReturnRows(mock.NewRows(columns).
			AddRow(int64(2), "https://cdn.example/b.jpg", "B", "general", newer).
			AddRow(int64(1), "https://cdn.example/a.jpg", "A", "Wedding", older))

	items, err := NewRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, "Wedding", items[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListEmptyIsNotNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM gallery`).WillReturnRows(mock.NewRows(columns))

	items, err := NewRepository(mock).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO gallery`).
		WithArgs("https://cdn.example/a.jpg", "", "general").
		WillReturnRows(mock.NewRows(columns).AddRow(int64(7), "https://cdn.example/a.jpg", "", "general", now))

	it, err := NewRepository(mock).Create(context.Background(), "https://cdn.example/a.jpg", "", "general")
	require.NoError(t, err)
	assert.Equal(t, int64(7), it.ID)
	assert.Equal(t, now, it.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateCoalescesNilFields(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	title := "Renamed"
	mock.ExpectQuery(`UPDATE gallery\s+SET url\s+= COALESCE\(\$2, url\)`).
		WithArgs(int64(5), nil, "Renamed", nil).
		WillReturnRows(mock.NewRows(columns).AddRow(int64(5), "https://cdn.example/a.jpg", "Renamed", "general", time.Now()))

	it, err := NewRepository(mock).Update(context.Background(), 5, nil, &title, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.jpg", it.URL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`UPDATE gallery`).
		WithArgs(int64(9), nil, nil, nil).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewRepository(mock).Update(context.Background(), 9, nil, nil, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRepositoryGetByIDMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT (.+) FROM gallery WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnError(pgx.ErrNoRows)

	_, err = NewRepository(mock).GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryDeleteReturnsRemovedRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`DELETE FROM gallery WHERE id = \$1 RETURNING`).
		WithArgs(int64(3)).
		WillReturnRows(mock.NewRows(columns).AddRow(int64(3), "https://cdn.example/a.jpg", "A", "general", time.Now()))
	mock.ExpectQuery(`DELETE FROM gallery WHERE id = \$1 RETURNING`).
		WithArgs(int64(3)).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRepository(mock)
	it, err := repo.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.jpg", it.URL)

	_, err = repo.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
