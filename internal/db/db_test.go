package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	dbpkg "github.com/adolfosalasgomez3011/luxpro-apps/internal/db"
)

func openTemp(t *testing.T) *dbpkg.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d, err := dbpkg.New(ctx, dbpkg.DialectSQLite, filepath.Join(t.TempDir(), "fams.db"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNew_Close_GetConn(t *testing.T) {
	d := openTemp(t)
	if d.GetConn() == nil {
		t.Fatalf("expected non-nil sql.DB from GetConn")
	}
	if d.Dialect() != dbpkg.DialectSQLite {
		t.Fatalf("unexpected dialect %q", d.Dialect())
	}
	if err := d.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}

func TestParseDialect(t *testing.T) {
	cases := map[string]dbpkg.Dialect{
		"":           dbpkg.DialectSQLite,
		"sqlite":     dbpkg.DialectSQLite,
		"Postgres":   dbpkg.DialectPostgres,
		"postgresql": dbpkg.DialectPostgres,
		"pgx":        dbpkg.DialectPostgres,
	}
	for in, want := range cases {
		got, err := dbpkg.ParseDialect(in)
		if err != nil || got != want {
			t.Fatalf("ParseDialect(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := dbpkg.ParseDialect("mysql"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM freelancers WHERE (? = '' OR LOWER(nombre) LIKE ? ESCAPE '\') AND notas <> '?' AND id = ?`
	got := dbpkg.Rebind(dbpkg.DialectPostgres, q)
	want := `SELECT id FROM freelancers WHERE ($1 = '' OR LOWER(nombre) LIKE $2 ESCAPE '\') AND notas <> '?' AND id = $3`
	if got != want {
		t.Fatalf("Rebind postgres:\n got %s\nwant %s", got, want)
	}
	if dbpkg.Rebind(dbpkg.DialectSQLite, q) != q {
		t.Fatalf("sqlite queries must be left untouched")
	}
}

func TestExec_QueryRow_Classify(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if _, err := d.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT UNIQUE, qty INTEGER CHECK(qty >= 0))`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	var id int64
	if err := d.QueryRow(ctx, `INSERT INTO items (name, qty) VALUES (?, ?) RETURNING id`, "foo", 1).Scan(&id); err != nil {
		t.Fatalf("insert returning: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected id > 0")
	}

	_, err := d.Exec(ctx, `INSERT INTO items (name, qty) VALUES (?, ?)`, "foo", 2)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}

	_, err = d.Exec(ctx, `INSERT INTO items (name, qty) VALUES (?, ?)`, "bar", -1)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error on check violation, got %v", err)
	}

	if dbpkg.Classify(nil) != nil {
		t.Fatalf("Classify(nil) should be nil")
	}
	if err := dbpkg.Classify(context.Canceled); !errors.Is(err, context.Canceled) || errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Fatalf("context errors must pass through, got %v", err)
	}
}

func TestWithTx_Rollback(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)
	if _, err := d.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	boom := errors.New("boom")
	err := d.WithTx(ctx, func(tx *dbpkg.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO items (name) VALUES (?)`, "gone"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected rollback, found %d rows", n)
	}
}

func TestNew_Unreachable(t *testing.T) {
	ctx := context.Background()
	_, err := dbpkg.New(ctx, dbpkg.DialectSQLite, filepath.Join(t.TempDir(), "missing", "dir", "fams.db"))
	if err == nil {
		t.Fatalf("expected error opening db in missing directory")
	}
	if !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestLower_FoldsAccents(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	tests := map[string]string{
		"ÁNGEL NÚÑEZ": "ángel núñez",
		"EPÓXICO":     "epóxico",
		"Jesús María": "jesús maría",
		"abc":         "abc",
	}
	for in, want := range tests {
		var got string
		if err := d.QueryRow(ctx, `SELECT LOWER(?)`, in).Scan(&got); err != nil {
			t.Fatalf("lower(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("lower(%q) = %q, want %q", in, got, want)
		}
	}

	var isNull bool
	if err := d.QueryRow(ctx, `SELECT LOWER(NULL) IS NULL`).Scan(&isNull); err != nil || !isNull {
		t.Fatalf("expected lower(NULL) to stay NULL, got %v, %v", isNull, err)
	}
}

func TestWithTx_ConcurrentReadThenWrite(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)
	if _, err := d.Exec(ctx, `CREATE TABLE counter (n INTEGER NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := d.Exec(ctx, `INSERT INTO counter (n) VALUES (0)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- d.WithTx(ctx, func(tx *dbpkg.Tx) error {
				var n int
				if err := tx.QueryRow(ctx, `SELECT n FROM counter`).Scan(&n); err != nil {
					return err
				}
				_, err := tx.Exec(ctx, `UPDATE counter SET n = ?`, n+1)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent transaction failed: %v", err)
		}
	}

	var n int
	if err := d.QueryRow(ctx, `SELECT n FROM counter`).Scan(&n); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	if n != workers {
		t.Fatalf("expected counter %d, got %d", workers, n)
	}
}
