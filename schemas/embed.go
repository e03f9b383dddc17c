// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the SQL migrations applied by database.Migrate,
// named NNN_description.sql and applied in name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS
