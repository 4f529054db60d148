package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

func (r *SQLRepo) CreateContact(ctx context.Context, e *models.ContactEntry) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("contact entry is nil")
	}
	if e.Fecha.IsZero() {
		e.Fecha = time.Now().UTC()
	}

	var id int64
	err := r.conn.QueryRow(ctx, `INSERT INTO contact_log (freelancer_id, fecha, tipo, notas) VALUES (?, ?, ?, ?) RETURNING id`,
		e.FreelancerID, e.Fecha, e.Tipo, nullString(e.Notas)).Scan(&id)
	if err != nil {
		return 0, wrap("create contact", err)
	}
	return id, nil
}

// ListContacts returns at most limit entries for the contractor, newest first.
func (r *SQLRepo) ListContacts(ctx context.Context, contractorID int64, limit int) ([]models.ContactEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.conn.Query(ctx, `SELECT id, freelancer_id, fecha, tipo, notas FROM contact_log
		WHERE freelancer_id = ? ORDER BY fecha DESC, id DESC LIMIT ?`, contractorID, limit)
	if err != nil {
		return nil, wrap("list contacts", err)
	}
	defer rows.Close()

	out := []models.ContactEntry{}
	for rows.Next() {
		var (
			e     models.ContactEntry
			notas sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.FreelancerID, &e.Fecha, &e.Tipo, &notas); err != nil {
			return nil, wrap("scan contact", err)
		}
		e.Notas = notas.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list contacts", err)
	}
	return out, nil
}
