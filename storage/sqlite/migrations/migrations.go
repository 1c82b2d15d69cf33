// Package migrations embeds the SQLite schema for the recipe store.
package migrations

import "embed"

//go:embed *.sql
var migrationFS embed.FS

// FS exposes the embedded SQL for the migration runner.
var FS = migrationFS
