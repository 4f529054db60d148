package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

const assignmentColumns = `a.id, a.project_id, a.freelancer_id, a.fecha_inicio, a.fecha_fin, a.tarifa_m2, a.monto_total, a.estado_pago`

func assignmentDest(a *models.Assignment, monto *sql.NullFloat64) []any {
	return []any{&a.ID, &a.ProjectID, &a.FreelancerID, &a.FechaInicio, &a.FechaFin, &a.TarifaM2, monto, &a.EstadoPago}
}

func (r *SQLRepo) CreateAssignment(ctx context.Context, a *models.Assignment) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("assignment is nil")
	}

	var id int64
	err := r.conn.QueryRow(ctx, `INSERT INTO assignments (project_id, freelancer_id, fecha_inicio, fecha_fin, tarifa_m2, monto_total, estado_pago)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		a.ProjectID, a.FreelancerID, a.FechaInicio, a.FechaFin, a.TarifaM2, a.MontoTotal, a.EstadoPago).Scan(&id)
	if err != nil {
		return 0, wrap("create assignment", err)
	}
	return id, nil
}

func (r *SQLRepo) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	var (
		a     models.Assignment
		monto sql.NullFloat64
	)
	err := r.conn.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments a WHERE a.id = ?`, id).Scan(assignmentDest(&a, &monto)...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get assignment", err)
	}
	a.MontoTotal = nullFloat(monto)
	return &a, nil
}

// ListAssignmentsByProject returns the project's assignments with the
// assigned contractor's contact summary.
func (r *SQLRepo) ListAssignmentsByProject(ctx context.Context, projectID int64) ([]models.AssignmentWithContractor, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+assignmentColumns+`, f.id, f.nombre, f.telefono, f.distrito, f.rating_promedio
		FROM assignments a JOIN freelancers f ON f.id = a.freelancer_id
		WHERE a.project_id = ?
		ORDER BY a.fecha_inicio ASC, a.id ASC`, projectID)
	if err != nil {
		return nil, wrap("list assignments by project", err)
	}
	defer rows.Close()

	out := []models.AssignmentWithContractor{}
	for rows.Next() {
		var (
			item     models.AssignmentWithContractor
			monto    sql.NullFloat64
			distrito sql.NullString
		)
		dest := append(assignmentDest(&item.Assignment, &monto),
			&item.Freelancer.ID, &item.Freelancer.Nombre, &item.Freelancer.Telefono, &distrito, &item.Freelancer.RatingPromedio)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrap("scan assignment", err)
		}
		item.MontoTotal = nullFloat(monto)
		item.Freelancer.Distrito = distrito.String
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list assignments by project", err)
	}
	return out, nil
}

// ListAssignmentsByContractor returns the contractor's project history, most
// recent start date first.
func (r *SQLRepo) ListAssignmentsByContractor(ctx context.Context, contractorID int64) ([]models.AssignmentWithProject, error) {
	rows, err := r.conn.Query(ctx, `SELECT `+assignmentColumns+`, p.id, p.nombre, p.cliente, p.ubicacion, p.estado
		FROM assignments a JOIN projects p ON p.id = a.project_id
		WHERE a.freelancer_id = ?
		ORDER BY a.fecha_inicio DESC, a.id DESC`, contractorID)
	if err != nil {
		return nil, wrap("list assignments by contractor", err)
	}
	defer rows.Close()

	out := []models.AssignmentWithProject{}
	for rows.Next() {
		var (
			item               models.AssignmentWithProject
			monto              sql.NullFloat64
			cliente, ubicacion sql.NullString
		)
		dest := append(assignmentDest(&item.Assignment, &monto),
			&item.Project.ID, &item.Project.Nombre, &cliente, &ubicacion, &item.Project.Estado)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrap("scan assignment", err)
		}
		item.MontoTotal = nullFloat(monto)
		item.Project.Cliente = cliente.String
		item.Project.Ubicacion = ubicacion.String
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list assignments by contractor", err)
	}
	return out, nil
}

func (r *SQLRepo) CountAssignmentsByContractor(ctx context.Context, contractorID int64) (int64, error) {
	var n int64
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM assignments WHERE freelancer_id = ?`, contractorID).Scan(&n); err != nil {
		return 0, wrap("count assignments", err)
	}
	return n, nil
}
