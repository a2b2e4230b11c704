// Package migrations embeds the reader's local SQLite schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
