package device

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/tidbit/internal/clock"
)

var (
	fixedNow      = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	deviceColumns = []string{
		"token", "platform", "notification_interval", "notifications_enabled", "quiet_hours_enabled",
		"quiet_hours_start", "quiet_hours_end", "selected_categories", "timezone_offset_minutes",
		"last_active", "created_at", "updated_at",
	}
)

func newMockRegistry(t *testing.T) (*DBRegistry, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	v, err := NewValidator()
	require.NoError(t, err)
	return NewDBRegistry(sqlx.NewDb(db, "mysql"), v, clock.NewFake(fixedNow)), mock
}

func TestDBRegistry_Upsert(t *testing.T) {
	tests := []struct {
		name      string
		input     Preference
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name:  "inserts or updates the device",
			input: validPreference(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO device_tokens").
					WithArgs("ExponentPushToken[abc123]", PlatformIOS, 30, true, true, 23, 9, Categories{"science"}, -480, fixedNow).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "nil categories are stored as an empty list",
			input: func() Preference {
				p := validPreference()
				p.SelectedCategories = nil
				return p
			}(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO device_tokens").
					WithArgs("ExponentPushToken[abc123]", PlatformIOS, 30, true, true, 23, 9, Categories{}, -480, fixedNow).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "invalid preference is not written",
			input: func() Preference {
				p := validPreference()
				p.QuietHoursEnd = 25
				return p
			}(),
			setupMock: func(mock sqlmock.Sqlmock) {},
			wantErr:   true,
		},
		{
			name:  "db error",
			input: validPreference(),
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO device_tokens").WillReturnError(fmt.Errorf("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, mock := newMockRegistry(t)
			tt.setupMock(mock)

			err := registry.Upsert(context.Background(), tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDBRegistry_ListEnabled(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		want      []Preference
		wantErr   bool
	}{
		{
			name: "returns enabled devices",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(deviceColumns).
					AddRow("ExponentPushToken[a]", "ios", 30, true, true, 23, 9, []byte(`["science"]`), -480, fixedNow, fixedNow, fixedNow).
					AddRow("ExponentPushToken[b]", "android", 60, true, false, 0, 0, nil, 540, fixedNow, fixedNow, fixedNow)
				mock.ExpectQuery("SELECT \\* FROM device_tokens WHERE notifications_enabled = 1 ORDER BY token").WillReturnRows(rows)
			},
			want: []Preference{
				{
					Token: "ExponentPushToken[a]", Platform: PlatformIOS, NotificationInterval: 30,
					NotificationsEnabled: true, QuietHoursEnabled: true, QuietHoursStart: 23, QuietHoursEnd: 9,
					SelectedCategories: Categories{"science"}, TimezoneOffsetMinutes: -480,
					LastActive: fixedNow, CreatedAt: fixedNow, UpdatedAt: fixedNow,
				},
				{
					Token: "ExponentPushToken[b]", Platform: PlatformAndroid, NotificationInterval: 60,
					NotificationsEnabled: true, SelectedCategories: Categories{}, TimezoneOffsetMinutes: 540,
					LastActive: fixedNow, CreatedAt: fixedNow, UpdatedAt: fixedNow,
				},
			},
		},
		{
			name: "db error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT \\* FROM device_tokens").WillReturnError(fmt.Errorf("timeout"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, mock := newMockRegistry(t)
			tt.setupMock(mock)

			got, err := registry.ListEnabled(context.Background())
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

func TestDBRegistry_Touch(t *testing.T) {
	registry, mock := newMockRegistry(t)
	mock.ExpectExec("UPDATE device_tokens SET last_active = \\? WHERE token = \\?").
		WithArgs(fixedNow, "ExponentPushToken[a]").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, registry.Touch(context.Background(), "ExponentPushToken[a]"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBRegistry_Delete(t *testing.T) {
	registry, mock := newMockRegistry(t)
	mock.ExpectExec("DELETE FROM device_tokens WHERE token = \\?").
		WithArgs("ExponentPushToken[a]").
		WillReturnError(fmt.Errorf("connection refused"))

	err := registry.Delete(context.Background(), "ExponentPushToken[a]")
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}
