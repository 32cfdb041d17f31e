package migrator

import (
	_ "embed"
)

// Schema is the desired database schema. Migrations diff the live database
// against it.
//
//go:embed schema.sql
var Schema string
