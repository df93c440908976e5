// Package migrations embeds the SQL schema migrations for each backend.
package migrations

import "embed"

// FS holds one directory of numbered migrations per database backend.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// Directories within FS.
const (
	PostgresDir = "postgres"
	SQLiteDir   = "sqlite"
)
