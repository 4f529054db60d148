package db

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

type seedContractor struct {
	DNI            string  `json:"dni"`
	Nombre         string  `json:"nombre"`
	Telefono       string  `json:"telefono"`
	Email          string  `json:"email"`
	Distrito       string  `json:"distrito"`
	Skills         string  `json:"skills"`
	RatingPromedio float64 `json:"rating_promedio"`
	Disponible     bool    `json:"disponible"`
	Notas          string  `json:"notas"`
}

// Seed loads seed/contractors.json from seedFS. Rows whose dni already exists
// are skipped so the call is idempotent. It returns how many rows were added.
func Seed(ctx context.Context, d *DB, seedFS fs.FS) (int64, error) {
	b, err := fs.ReadFile(seedFS, path.Join("seed", "contractors.json"))
	if err != nil {
		return 0, fmt.Errorf("read seed contractors: %w", err)
	}
	var rows []seedContractor
	if err := json.Unmarshal(b, &rows); err != nil {
		return 0, fmt.Errorf("decode seed contractors: %w", err)
	}

	var inserted int64
	err = d.WithTx(ctx, func(tx *Tx) error {
		for _, c := range rows {
			dni := nullIfBlank(c.DNI)
			if dni == nil {
				// NULL dni never conflicts, so match on name and phone instead.
				var exists bool
				if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM freelancers WHERE dni IS NULL AND nombre = ? AND telefono = ?)`,
					c.Nombre, c.Telefono).Scan(&exists); err != nil {
					return fmt.Errorf("seed contractor %s: %w", c.Nombre, err)
				}
				if exists {
					continue
				}
			}
			res, err := tx.Exec(ctx, `INSERT INTO freelancers (dni, nombre, telefono, email, distrito, skills, rating_promedio, estado, disponible, notas)
				VALUES (?, ?, ?, ?, ?, ?, ?, 'Activo', ?, ?)
				ON CONFLICT (dni) DO NOTHING`,
				dni, c.Nombre, c.Telefono, nullIfBlank(c.Email), nullIfBlank(c.Distrito), nullIfBlank(c.Skills),
				c.RatingPromedio, c.Disponible, nullIfBlank(c.Notas))
			if err != nil {
				return fmt.Errorf("seed contractor %s: %w", c.Nombre, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += n
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func nullIfBlank(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
