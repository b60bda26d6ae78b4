package postgres

import _ "embed"

// Schema creates every table the store needs. It is safe to apply repeatedly.
//
//go:embed schema.sql
var Schema string
