// Package migrations holds the SQL schema migrations, embedded so binaries
// can migrate without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
