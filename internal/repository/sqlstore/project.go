package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

const projectColumns = `id, nombre, cliente, ubicacion, fecha_inicio, fecha_fin, metros_cuadrados, producto, estado, created_at`

func scanProject(s rowScanner) (*models.Project, error) {
	var (
		p                            models.Project
		cliente, ubicacion, producto sql.NullString
		m2                           sql.NullFloat64
	)
	if err := s.Scan(&p.ID, &p.Nombre, &cliente, &ubicacion, &p.FechaInicio, &p.FechaFin, &m2, &producto, &p.Estado, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Cliente = cliente.String
	p.Ubicacion = ubicacion.String
	p.Producto = producto.String
	p.MetrosCuadrados = nullFloat(m2)
	return &p, nil
}

func (r *SQLRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("project is nil")
	}

	var id int64
	err := r.conn.QueryRow(ctx, `INSERT INTO projects (nombre, cliente, ubicacion, fecha_inicio, fecha_fin, metros_cuadrados, producto, estado)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		p.Nombre, nullString(p.Cliente), nullString(p.Ubicacion), p.FechaInicio, p.FechaFin, p.MetrosCuadrados,
		nullString(p.Producto), p.Estado).Scan(&id)
	if err != nil {
		return 0, wrap("create project", err)
	}
	return id, nil
}

func (r *SQLRepo) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(r.conn.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get project", err)
	}
	return p, nil
}

// ListProjects returns every project, newest first.
func (r *SQLRepo) ListProjects(ctx context.Context) ([]models.Project, error) {
	return r.listProjects(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC, id DESC`)
}

// ListProjectsByStatus returns projects in estado whose ubicacion contains
// the given text, ignoring case. An empty ubicacion matches every project.
func (r *SQLRepo) ListProjectsByStatus(ctx context.Context, estado, ubicacion string) ([]models.Project, error) {
	ubicacion = strings.TrimSpace(ubicacion)
	return r.listProjects(ctx, `SELECT `+projectColumns+` FROM projects
		WHERE estado = ? AND (? = '' OR LOWER(COALESCE(ubicacion, '')) LIKE ? ESCAPE '\')
		ORDER BY fecha_inicio ASC, id ASC`,
		estado, ubicacion, likePattern(ubicacion))
}

func (r *SQLRepo) listProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list projects", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, wrap("scan project", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list projects", err)
	}
	return out, nil
}
