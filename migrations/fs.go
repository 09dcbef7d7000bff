// Package migrations embeds the SQL migrations for the remote document store.
package migrations

import "embed"

// FS exposes the embedded migration files to goose.
//
//go:embed *.sql
var FS embed.FS
