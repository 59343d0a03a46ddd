// Package migrations holds the goose SQL migrations of the booking database.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
