// Package device stores per-device notification preferences.
package device

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Platform is the operating system of a device.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformWeb     Platform = "web"
)

// Preference is the notification setting of one push token.
type Preference struct {
	Token    string   `db:"token" json:"token" validate:"required,max=255,expo_token"`
	Platform Platform `db:"platform" json:"platform" validate:"required,oneof=ios android web"`
	// NotificationInterval is in minutes. Zero means no scheduled notifications.
	NotificationInterval  int        `db:"notification_interval" json:"notificationInterval" validate:"omitempty,min=1,max=1440"`
	NotificationsEnabled  bool       `db:"notifications_enabled" json:"notificationsEnabled"`
	QuietHoursEnabled     bool       `db:"quiet_hours_enabled" json:"quietHoursEnabled"`
	QuietHoursStart       int        `db:"quiet_hours_start" json:"quietHoursStart" validate:"min=0,max=23"`
	QuietHoursEnd         int        `db:"quiet_hours_end" json:"quietHoursEnd" validate:"min=0,max=23"`
	SelectedCategories    Categories `db:"selected_categories" json:"selectedCategories" validate:"max=100,dive,required,max=64"`
	TimezoneOffsetMinutes int        `db:"timezone_offset_minutes" json:"timezoneOffsetMinutes" validate:"min=-720,max=840"`
	LastActive            time.Time  `db:"last_active" json:"lastActive"`
	CreatedAt             time.Time  `db:"created_at" json:"-"`
	UpdatedAt             time.Time  `db:"updated_at" json:"-"`
}

// Categories is a set of category ids stored as a JSON array column.
type Categories []string

// Value implements driver.Valuer.
func (c Categories) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(c))
	if err != nil {
		return nil, fmt.Errorf("json.Marshal() > %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *Categories) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*c = Categories{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for categories", src)
	}

	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		return fmt.Errorf("json.Unmarshal() > %w", err)
	}
	*c = ids
	return nil
}
