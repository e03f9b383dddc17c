package content

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tidbitColumns = []string{"id", "category_id", "text", "sort_order", "is_active", "created_at", "updated_at"}

func newMockDBStore(t *testing.T) (*DBStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDBStore(sqlx.NewDb(db, "mysql")), mock
}

func TestDBStore_Categories(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      []Category
		wantErr   bool
	}{
		{
			name: "returns categories",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "name", "description"}).
					AddRow("history", "History", "Events of the past").
					AddRow("science", "Science", "")
				mock.ExpectQuery("SELECT id, name, description FROM categories ORDER BY id").WillReturnRows(rows)
			},
			want: []Category{
				{ID: "history", Name: "History", Description: "Events of the past"},
				{ID: "science", Name: "Science"},
			},
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, name, description FROM categories ORDER BY id").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockDBStore(t)
			tt.setupMock(mock)

			got, err := store.Categories(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBStore_TidbitsByCategory(t *testing.T) {
	store, mock := newMockDBStore(t)
	mock.ExpectQuery("SELECT text FROM tidbits WHERE category_id = \\? AND is_active = 1 ORDER BY sort_order, id").
		WithArgs("science").
		WillReturnRows(sqlmock.NewRows([]string{"text"}).AddRow("Octopuses have three hearts.").AddRow("Honey never spoils."))

	got, err := store.TidbitsByCategory(context.Background(), "science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Octopuses have three hearts.", "Honey never spoils."}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_Snapshot(t *testing.T) {
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	query := "SELECT \\* FROM tidbits WHERE is_active = 1 ORDER BY category_id, sort_order, id"

	store, mock := newMockDBStore(t)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows(tidbitColumns).
			AddRow("tidbit_1", "history", "The Great Fire of London was in 1666.", 0, true, older, older).
			AddRow("tidbit_2", "science", "Octopuses have three hearts.", 0, true, older, newer))
	}

	got, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"history": {"The Great Fire of London was in 1666."},
		"science": {"Octopuses have three hearts."},
	}, got.Tidbits)
	assert.Equal(t, newer, got.LastModified)
	assert.NotEmpty(t, got.Version)

	again, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got.Version, again.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBStore_FindTidbit(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantNil   bool
		wantErr   bool
	}{
		{
			name: "found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tidbits WHERE id = \\?").
					WithArgs("tidbit_1").
					WillReturnRows(sqlmock.NewRows(tidbitColumns).AddRow("tidbit_1", "science", "text", 3, true, now, now))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tidbits WHERE id = \\?").
					WithArgs("tidbit_1").
					WillReturnRows(sqlmock.NewRows(tidbitColumns))
			},
			wantNil: true,
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM tidbits WHERE id = \\?").
					WithArgs("tidbit_1").
					WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockDBStore(t)
			tt.setupMock(mock)

			got, err := store.FindTidbit(context.Background(), "tidbit_1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, "science", got.CategoryID)
			assert.Equal(t, 3, got.SortOrder)
			assert.True(t, got.IsActive)
		})
	}
}

func TestDBStore_Writes(t *testing.T) {
	ctx := context.Background()
	record := &TidbitRecord{ID: "tidbit_1", CategoryID: "science", Text: "text", SortOrder: 2, IsActive: true}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(store *DBStore) error
		wantErr   bool
	}{
		{
			name: "upsert category",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO categories").
					WithArgs("science", "Science", "").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(store *DBStore) error {
				return store.UpsertCategory(ctx, Category{ID: "science", Name: "Science"})
			},
		},
		{
			name: "create tidbit",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO tidbits").
					WithArgs("tidbit_1", "science", "text", 2, true).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(store *DBStore) error { return store.CreateTidbit(ctx, record) },
		},
		{
			name: "update tidbit",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("UPDATE tidbits SET sort_order = \\?, is_active = \\? WHERE id = \\?").
					WithArgs(2, true, "tidbit_1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(store *DBStore) error { return store.UpdateTidbit(ctx, record) },
		},
		{
			name: "create tidbit error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO tidbits").WillReturnError(fmt.Errorf("duplicate entry"))
			},
			run:     func(store *DBStore) error { return store.CreateTidbit(ctx, record) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMockDBStore(t)
			tt.setupMock(mock)

			err := tt.run(store)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
