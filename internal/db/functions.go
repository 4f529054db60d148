package db

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// SQLite's built-in lower() folds ASCII only, so "Á" never matches "á".
// Replacing it on every connection keeps LOWER(col) LIKE ? searches
// case-insensitive for accented names the way ILIKE is on Postgres.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		// NULL and numbers pass through; the built-in returns them unchanged too.
		return v, nil
	}
}
