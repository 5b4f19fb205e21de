// Package finder holds assets shared by every command of the lead finder.
package finder

import "embed"

// Migrations contains the goose SQL migrations of the businesses database.
//
//go:embed migrations/*.sql
var Migrations embed.FS
