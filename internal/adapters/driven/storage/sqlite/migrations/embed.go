// Package migrations holds the numbered SQLite schema files applied by
// sqlite.NewStore.
package migrations

import "embed"

// FS holds the NNN_name.up.sql and .down.sql files.
//
//go:embed *.sql
var FS embed.FS
