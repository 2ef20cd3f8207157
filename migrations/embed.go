// Package migrations embeds the SQL migration files so goose's programmatic
// API can apply them from the CLI and from the postgres test harness without
// a filesystem path at runtime.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
