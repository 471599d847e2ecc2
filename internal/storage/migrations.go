package storage

import "embed"

// migrationsFS embeds the per-dialect schema migrations applied on startup.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS
