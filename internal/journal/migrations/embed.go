package migrations

import "embed"

// FS contains the embedded journal schema migrations.
//
//go:embed *.sql
var FS embed.FS
