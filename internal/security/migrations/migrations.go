// Package migrations embeds the security schema migrations for goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
