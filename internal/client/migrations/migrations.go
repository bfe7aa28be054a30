// Package migrations embeds the goose migrations for the local store.
// Migrations are additive only: a collection introduced in a later version
// is created without touching the existing ones.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
