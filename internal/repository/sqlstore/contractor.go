package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

const contractorColumns = `id, dni, nombre, telefono, email, distrito, skills, rating_promedio, estado, disponible, notas, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContractor(s rowScanner) (*models.Contractor, error) {
	var (
		c                                  models.Contractor
		dni, email, distrito, skills, nota sql.NullString
	)
	if err := s.Scan(&c.ID, &dni, &c.Nombre, &c.Telefono, &email, &distrito, &skills, &c.RatingPromedio, &c.Estado, &c.Disponible, &nota, &c.CreatedAt); err != nil {
		return nil, err
	}
	if dni.Valid && dni.String != "" {
		v := dni.String
		c.DNI = &v
	}
	c.Email = email.String
	c.Distrito = distrito.String
	c.Skills = skills.String
	c.Notas = nota.String
	return &c, nil
}

func dniArg(dni *string) any {
	if dni == nil {
		return nil
	}
	return nullString(*dni)
}

func (r *SQLRepo) CreateContractor(ctx context.Context, c *models.Contractor) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("contractor is nil")
	}

	var id int64
	err := r.conn.QueryRow(ctx, `INSERT INTO freelancers (dni, nombre, telefono, email, distrito, skills, rating_promedio, estado, disponible, notas)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`,
		dniArg(c.DNI), c.Nombre, c.Telefono, nullString(c.Email), nullString(c.Distrito), nullString(c.Skills),
		c.RatingPromedio, c.Estado, c.Disponible, nullString(c.Notas)).Scan(&id)
	if err != nil {
		return 0, wrap("create contractor", err)
	}
	return id, nil
}

func (r *SQLRepo) GetContractor(ctx context.Context, id int64) (*models.Contractor, error) {
	c, err := scanContractor(r.conn.QueryRow(ctx, `SELECT `+contractorColumns+` FROM freelancers WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get contractor", err)
	}
	return c, nil
}

func (r *SQLRepo) GetContractorByDNI(ctx context.Context, dni string) (*models.Contractor, error) {
	c, err := scanContractor(r.conn.QueryRow(ctx, `SELECT `+contractorColumns+` FROM freelancers WHERE dni = ?`, strings.TrimSpace(dni)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get contractor by dni", err)
	}
	return c, nil
}

// ListContractors applies every filter dimension through bound parameters;
// an empty value disables its predicate. Results are ordered by rating, then name.
func (r *SQLRepo) ListContractors(ctx context.Context, f models.ContractorFilter) ([]models.Contractor, error) {
	search := strings.TrimSpace(f.Search)
	skill := strings.TrimSpace(f.Skill)
	district := strings.TrimSpace(f.District)
	useAvail, avail := boolFlag(f.Available)

	rows, err := r.conn.Query(ctx, `SELECT `+contractorColumns+` FROM freelancers
		WHERE (? = '' OR LOWER(nombre) LIKE ? ESCAPE '\')
		  AND (? = '' OR LOWER(COALESCE(skills, '')) LIKE ? ESCAPE '\')
		  AND (? = '' OR distrito = ?)
		  AND (? = 0 OR disponible = ?)
		ORDER BY rating_promedio DESC, nombre ASC, id ASC`,
		search, likePattern(search),
		skill, likePattern(skill),
		district, district,
		useAvail, avail)
	if err != nil {
		return nil, wrap("list contractors", err)
	}
	defer rows.Close()

	out := []models.Contractor{}
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, wrap("scan contractor", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list contractors", err)
	}
	return out, nil
}

func (r *SQLRepo) UpdateContractor(ctx context.Context, c *models.Contractor) error {
	if c == nil {
		return fmt.Errorf("contractor is nil")
	}
	_, err := r.conn.Exec(ctx, `UPDATE freelancers SET dni = ?, nombre = ?, telefono = ?, email = ?, distrito = ?, skills = ?,
		rating_promedio = ?, estado = ?, disponible = ?, notas = ? WHERE id = ?`,
		dniArg(c.DNI), c.Nombre, c.Telefono, nullString(c.Email), nullString(c.Distrito), nullString(c.Skills),
		c.RatingPromedio, c.Estado, c.Disponible, nullString(c.Notas), c.ID)
	if err != nil {
		return wrap("update contractor", err)
	}
	return nil
}

func (r *SQLRepo) DeleteContractor(ctx context.Context, id int64) error {
	if _, err := r.conn.Exec(ctx, `DELETE FROM freelancers WHERE id = ?`, id); err != nil {
		return wrap("delete contractor", err)
	}
	return nil
}

func (r *SQLRepo) SetAvailability(ctx context.Context, id int64, available bool) error {
	if _, err := r.conn.Exec(ctx, `UPDATE freelancers SET disponible = ? WHERE id = ?`, available, id); err != nil {
		return wrap("set availability", err)
	}
	return nil
}

func (r *SQLRepo) SetAverageRating(ctx context.Context, id int64, avg float64) error {
	if _, err := r.conn.Exec(ctx, `UPDATE freelancers SET rating_promedio = ? WHERE id = ?`, avg, id); err != nil {
		return wrap("set average rating", err)
	}
	return nil
}

// ContractorStats counts contractors with the given estado. The average is not rounded.
func (r *SQLRepo) ContractorStats(ctx context.Context, estado string) (models.Stats, error) {
	var s models.Stats
	err := r.conn.QueryRow(ctx, `SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN disponible THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(rating_promedio), 0)
		FROM freelancers WHERE estado = ?`, estado).Scan(&s.Total, &s.Disponibles, &s.AvgRating)
	if err != nil {
		return models.Stats{}, wrap("contractor stats", err)
	}
	s.EnProyecto = s.Total - s.Disponibles
	return s, nil
}

func (r *SQLRepo) ListDistricts(ctx context.Context) ([]string, error) {
	rows, err := r.conn.Query(ctx, `SELECT DISTINCT distrito FROM freelancers WHERE distrito IS NOT NULL AND distrito <> '' ORDER BY distrito`)
	if err != nil {
		return nil, wrap("list districts", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, wrap("scan district", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list districts", err)
	}
	return out, nil
}
