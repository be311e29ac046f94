// Package migrations embeds the goose migrations, one directory per dialect.
package migrations

import "embed"

// FS holds postgres/*.sql and sqlite/*.sql.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Migration directories inside FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
