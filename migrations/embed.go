package migrations

import "embed"

// Files stores forward-only SQL migrations for the mood record store embedded into the binary.
//
//go:embed *.sql
var Files embed.FS
