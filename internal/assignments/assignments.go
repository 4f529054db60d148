// Package assignments links contractors to projects. Creating an assignment
// marks the contractor as unavailable in the same transaction.
package assignments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/events"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/projects"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/validation"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository"
)

// Input describes a new assignment. MontoTotal is taken as given; it is never
// derived from the rate and the project area.
type Input struct {
	ProjectID    int64        `json:"project_id"`
	FreelancerID int64        `json:"freelancer_id" validate:"required"`
	FechaInicio  *models.Date `json:"fecha_inicio"`
	FechaFin     *models.Date `json:"fecha_fin"`
	TarifaM2     float64      `json:"tarifa_m2" validate:"gte=0"`
	MontoTotal   *float64     `json:"monto_total" validate:"omitempty,gte=0"`
	EstadoPago   string       `json:"estado_pago" validate:"max=20"`
}

type Lifecycle struct {
	store  repository.Store
	events events.Publisher
	logger *slog.Logger
}

func New(store repository.Store, pub events.Publisher, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Lifecycle{store: store, events: pub, logger: logger}
}

// Create assigns a contractor to a project and flips the contractor to
// unavailable. Nothing is written when either side does not exist.
func (l *Lifecycle) Create(ctx context.Context, in Input) (int64, error) {
	in.EstadoPago = strings.TrimSpace(in.EstadoPago)
	in.FechaInicio = models.DateOrNil(in.FechaInicio)
	in.FechaFin = models.DateOrNil(in.FechaFin)
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	if err := projects.CheckDates(in.FechaInicio, in.FechaFin); err != nil {
		return 0, err
	}
	if in.EstadoPago == "" {
		in.EstadoPago = models.PagoPendiente
	}

	a := &models.Assignment{
		ProjectID:    in.ProjectID,
		FreelancerID: in.FreelancerID,
		FechaInicio:  in.FechaInicio,
		FechaFin:     in.FechaFin,
		TarifaM2:     in.TarifaM2,
		MontoTotal:   in.MontoTotal,
		EstadoPago:   in.EstadoPago,
	}

	var id int64
	err := l.store.WithinTx(ctx, func(tx repository.Store) error {
		p, err := tx.GetProject(ctx, in.ProjectID)
		if err != nil {
			return err
		}
		if p == nil {
			return apperr.NotFound("project", in.ProjectID)
		}
		c, err := tx.GetContractor(ctx, in.FreelancerID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("contractor", in.FreelancerID)
		}
		if id, err = tx.CreateAssignment(ctx, a); err != nil {
			return err
		}
		return tx.SetAvailability(ctx, in.FreelancerID, false)
	})
	if err != nil {
		return 0, fmt.Errorf("create assignment: %w", err)
	}

	l.logger.Info("assignment created",
		slog.Int64("assignment_id", id),
		slog.Int64("project_id", in.ProjectID),
		slog.Int64("contractor_id", in.FreelancerID),
	)
	events.Notify(ctx, l.events, l.logger, events.Event{
		Type: events.AssignmentCreated, ID: id, ProjectID: in.ProjectID, ContractorID: in.FreelancerID,
	})
	return id, nil
}

// ProjectAssignments lists a project's assignments with contractor details.
func (l *Lifecycle) ProjectAssignments(ctx context.Context, projectID int64) ([]models.AssignmentWithContractor, error) {
	p, err := l.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project assignments: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("project", projectID)
	}
	out, err := l.store.ListAssignmentsByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project assignments: %w", err)
	}
	return out, nil
}

// ContractorProjects lists a contractor's assignments with project details.
func (l *Lifecycle) ContractorProjects(ctx context.Context, contractorID int64) ([]models.AssignmentWithProject, error) {
	c, err := l.store.GetContractor(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("contractor projects: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("contractor", contractorID)
	}
	out, err := l.store.ListAssignmentsByContractor(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("contractor projects: %w", err)
	}
	return out, nil
}
