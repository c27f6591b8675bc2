// Package schema embeds the users table definitions for each store.
package schema

import _ "embed"

//go:embed postgres.sql
var Postgres string

//go:embed sqlite.sql
var SQLite string
