package database

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tidbit/schemas"
)

func TestMigrate(t *testing.T) {
	migrations := fstest.MapFS{
		"migrations/001_create_a.sql": {Data: []byte("CREATE TABLE a (id INT)")},
		"migrations/002_create_b.sql": {Data: []byte("CREATE TABLE b (id INT)")},
		"migrations/README.md":        {Data: []byte("not a migration")},
	}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      []string
		wantErr   string
	}{
		{
			name: "applies pending migrations in order",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT version FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"version"}))
				for _, m := range []struct{ version, body string }{
					{"001_create_a", "CREATE TABLE a (id INT)"},
					{"002_create_b", "CREATE TABLE b (id INT)"},
				} {
					mock.ExpectBegin()
					mock.ExpectExec(regexp.QuoteMeta(m.body)).WillReturnResult(sqlmock.NewResult(0, 0))
					mock.ExpectExec("INSERT INTO schema_migrations").WithArgs(m.version).WillReturnResult(sqlmock.NewResult(0, 1))
					mock.ExpectCommit()
				}
			},
			want: []string{"001_create_a", "002_create_b"},
		},
		{
			name: "skips applied migrations",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT version FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_create_a"))
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id INT)")).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("002_create_b").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			want: []string{"002_create_b"},
		},
		{
			name: "stops at a failing migration",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery("SELECT version FROM schema_migrations").
					WillReturnRows(sqlmock.NewRows([]string{"version"}))
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a (id INT)")).WillReturnError(fmt.Errorf("syntax error"))
				mock.ExpectRollback()
			},
			wantErr: "syntax error",
		},
		{
			name: "migrations table cannot be created",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnError(fmt.Errorf("access denied"))
			},
			wantErr: "access denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			got, err := Migrate(context.Background(), sqlx.NewDb(db, "mysql"), migrations, "migrations")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT version FROM schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_create_content").AddRow("002_create_devices"))

	got, err := Migrate(context.Background(), sqlx.NewDb(db, "mysql"), schemas.Migrations, "migrations")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
