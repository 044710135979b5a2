// Package migrations embeds the per-driver schema migration files so a
// single binary can bootstrap its own database.
package migrations

import "embed"

//go:embed sqlite/*.sql
var SqliteMigrations embed.FS

//go:embed postgres/*.sql
var PostgresMigrations embed.FS
