// Package projects is the registry of client projects contractors are assigned to.
package projects

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/validation"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository"
)

type Input struct {
	Nombre          string       `json:"nombre" validate:"required,max=200"`
	Cliente         string       `json:"cliente" validate:"max=200"`
	Ubicacion       string       `json:"ubicacion"`
	FechaInicio     *models.Date `json:"fecha_inicio"`
	FechaFin        *models.Date `json:"fecha_fin"`
	MetrosCuadrados *float64     `json:"metros_cuadrados" validate:"omitempty,gte=0"`
	Producto        string       `json:"producto" validate:"max=50"`
	Estado          string       `json:"estado" validate:"max=20"`
}

type Registry struct {
	store  repository.Store
	logger *slog.Logger
}

func New(store repository.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Registry{store: store, logger: logger}
}

// Create stores a project. estado defaults to Planificado.
func (r *Registry) Create(ctx context.Context, in Input) (int64, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Cliente = strings.TrimSpace(in.Cliente)
	in.Ubicacion = strings.TrimSpace(in.Ubicacion)
	in.Producto = strings.TrimSpace(in.Producto)
	in.Estado = strings.TrimSpace(in.Estado)
	in.FechaInicio = models.DateOrNil(in.FechaInicio)
	in.FechaFin = models.DateOrNil(in.FechaFin)
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	if err := CheckDates(in.FechaInicio, in.FechaFin); err != nil {
		return 0, err
	}
	if in.Estado == "" {
		in.Estado = models.EstadoPlanificado
	}

	p := &models.Project{
		Nombre:          in.Nombre,
		Cliente:         in.Cliente,
		Ubicacion:       in.Ubicacion,
		FechaInicio:     in.FechaInicio,
		FechaFin:        in.FechaFin,
		MetrosCuadrados: in.MetrosCuadrados,
		Producto:        in.Producto,
		Estado:          in.Estado,
	}
	id, err := r.store.CreateProject(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}
	r.logger.Info("project created", slog.Int64("project_id", id), slog.String("estado", p.Estado))
	return id, nil
}

// List returns every project, newest first.
func (r *Registry) List(ctx context.Context) ([]models.Project, error) {
	out, err := r.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return out, nil
}

func (r *Registry) Get(ctx context.Context, id int64) (*models.Project, error) {
	p, err := r.store.GetProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("project", id)
	}
	return p, nil
}

// Opportunities lists planned projects, optionally narrowed to those whose
// location mentions district.
func (r *Registry) Opportunities(ctx context.Context, district string) ([]models.Project, error) {
	out, err := r.store.ListProjectsByStatus(ctx, models.EstadoPlanificado, district)
	if err != nil {
		return nil, fmt.Errorf("opportunities: %w", err)
	}
	return out, nil
}

// CheckDates rejects an end date before the start date when both are set.
func CheckDates(start, end *models.Date) error {
	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return nil
	}
	if end.Before(start.Time) {
		return apperr.FieldErrors{"fecha_fin": "must not be before fecha_inicio"}
	}
	return nil
}
