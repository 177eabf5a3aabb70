// Package db embeds the database schema and the sample catalog.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables.
//
//go:embed migrations/001_schema.sql
var Schema string

// SeedProducts is the sample catalog loaded by seed-db.
//
//go:embed seed/products.json
var SeedProducts []byte
