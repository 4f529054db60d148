// Package db embeds the schema migrations and seed data shipped with the binaries.
package db

import "embed"

// Migrations holds one directory of ordered .sql files per dialect.
//
//go:embed migrations
var Migrations embed.FS

//go:embed seed/*.json
var SeedFiles embed.FS
