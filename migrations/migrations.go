// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds every *.sql migration in golang-migrate's "<version>_<name>.<up|down>.sql" layout.
//
//go:embed *.sql
var FS embed.FS
