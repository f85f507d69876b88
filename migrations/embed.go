// Package migrations embeds the SQL schema for the load target, so the
// binary can bring up the tables without a migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
