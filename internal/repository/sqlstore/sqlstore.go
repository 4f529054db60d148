package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/db"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository"
)

// SQLRepo implements repository.Store on top of the internal DB wrapper. The
// same queries serve sqlite and postgres; the wrapper rebinds placeholders.
type SQLRepo struct {
	root   *db.DB
	conn   db.Querier
	inTx   bool
	logger *slog.Logger
}

// Ensure SQLRepo implements the public interfaces.
var _ repository.Store = (*SQLRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLRepo{root: conn, conn: conn, logger: logger}
}

// WithinTx runs fn against a repo bound to one transaction. Nested calls reuse
// the outer transaction.
func (r *SQLRepo) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if r.inTx {
		return fn(r)
	}
	return r.root.WithTx(ctx, func(tx *db.Tx) error {
		return fn(&SQLRepo{root: r.root, conn: tx, inTx: true, logger: r.logger})
	})
}

// wrap classifies err and prefixes it with the failing operation.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, db.Classify(err))
}

// nullString stores empty optional text as NULL.
func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// likePattern builds a case-insensitive substring pattern with LIKE wildcards
// in the needle escaped.
func likePattern(needle string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(needle))) + "%"
}

func boolFlag(b *bool) (int, bool) {
	if b == nil {
		return 0, false
	}
	return 1, *b
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
