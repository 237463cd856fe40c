// Package migrations embeds the goose SQL migrations applied on start-up.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
