package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

func (r *SQLRepo) CreateRating(ctx context.Context, rt *models.Rating) (int64, error) {
	if rt == nil {
		return 0, fmt.Errorf("rating is nil")
	}

	var id int64
	err := r.conn.QueryRow(ctx, `INSERT INTO ratings (assignment_id, calidad, puntualidad, instrucciones, seguridad, profesionalismo, rating_general, comentarios, fecha)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		rt.AssignmentID, rt.Calidad, rt.Puntualidad, rt.Instrucciones, rt.Seguridad, rt.Profesionalismo,
		rt.RatingGeneral, nullString(rt.Comentarios), rt.Fecha).Scan(&id)
	if err != nil {
		return 0, wrap("create rating", err)
	}
	return id, nil
}

func (r *SQLRepo) RatingExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error) {
	var n int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM ratings WHERE assignment_id = ?`, assignmentID).Scan(&n); err != nil {
		return false, wrap("rating exists", err)
	}
	return n > 0, nil
}

// ListRatingsByContractor returns every rating given through the contractor's
// assignments, newest first, with the project name.
func (r *SQLRepo) ListRatingsByContractor(ctx context.Context, contractorID int64) ([]models.RatingWithProject, error) {
	rows, err := r.conn.Query(ctx, `SELECT r.id, r.assignment_id, r.calidad, r.puntualidad, r.instrucciones, r.seguridad, r.profesionalismo,
			r.rating_general, r.comentarios, r.fecha, p.nombre
		FROM ratings r
		JOIN assignments a ON a.id = r.assignment_id
		JOIN projects p ON p.id = a.project_id
		WHERE a.freelancer_id = ?
		ORDER BY r.fecha DESC, r.id DESC`, contractorID)
	if err != nil {
		return nil, wrap("list ratings", err)
	}
	defer rows.Close()

	out := []models.RatingWithProject{}
	for rows.Next() {
		var (
			item models.RatingWithProject
			com  sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.AssignmentID, &item.Calidad, &item.Puntualidad, &item.Instrucciones,
			&item.Seguridad, &item.Profesionalismo, &item.RatingGeneral, &com, &item.Fecha, &item.Proyecto); err != nil {
			return nil, wrap("scan rating", err)
		}
		item.Comentarios = com.String
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list ratings", err)
	}
	return out, nil
}

// ListRatingGeneralsByContractor returns the composite score of every rating
// whose assignment belongs to the contractor.
func (r *SQLRepo) ListRatingGeneralsByContractor(ctx context.Context, contractorID int64) ([]float64, error) {
	rows, err := r.conn.Query(ctx, `SELECT r.rating_general FROM ratings r
		JOIN assignments a ON a.id = r.assignment_id
		WHERE a.freelancer_id = ?
		ORDER BY r.id`, contractorID)
	if err != nil {
		return nil, wrap("list rating generals", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, wrap("scan rating general", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list rating generals", err)
	}
	return out, nil
}
