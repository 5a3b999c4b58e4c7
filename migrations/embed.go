// Package migrations embeds the SQL migration files for the Postgres trip-log
// backend so goose can apply them from the importer, the API server, and tests.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// Pass this to goose.NewProvider instead of relying on a filesystem path at runtime.
//
//go:embed *.sql
var FS embed.FS
