// Package directory manages the contractor records: listing and search,
// registration, edits, availability, contact history and summary stats.
package directory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/events"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/ratings"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/validation"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository"
)

const (
	DefaultContactLimit = 10
	MaxContactLimit     = 100
)

// Input carries the writable contractor fields for create and update. Update
// replaces the whole record, so omitted optional fields are cleared.
type Input struct {
	DNI            string   `json:"dni" validate:"max=20"`
	Nombre         string   `json:"nombre" validate:"required,max=100"`
	Telefono       string   `json:"telefono" validate:"required,max=15"`
	Email          string   `json:"email" validate:"omitempty,email,max=100"`
	Distrito       string   `json:"distrito" validate:"max=50"`
	Skills         string   `json:"skills"`
	RatingPromedio *float64 `json:"rating_promedio" validate:"omitempty,gte=0,lte=5"`
	Estado         string   `json:"estado" validate:"max=20"`
	Disponible     *bool    `json:"disponible"`
	Notas          string   `json:"notas"`
}

func (in *Input) normalize() {
	in.DNI = strings.TrimSpace(in.DNI)
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Telefono = strings.TrimSpace(in.Telefono)
	in.Email = strings.TrimSpace(in.Email)
	in.Distrito = strings.TrimSpace(in.Distrito)
	in.Skills = strings.TrimSpace(in.Skills)
	in.Estado = strings.TrimSpace(in.Estado)
	in.Notas = strings.TrimSpace(in.Notas)
}

func (in Input) contractor(id int64) models.Contractor {
	c := models.Contractor{
		ID:         id,
		Nombre:     in.Nombre,
		Telefono:   in.Telefono,
		Email:      in.Email,
		Distrito:   in.Distrito,
		Skills:     in.Skills,
		Estado:     in.Estado,
		Disponible: true,
		Notas:      in.Notas,
	}
	if in.DNI != "" {
		dni := in.DNI
		c.DNI = &dni
	}
	if in.RatingPromedio != nil {
		c.RatingPromedio = ratings.Round(*in.RatingPromedio, 2)
	}
	if c.Estado == "" {
		c.Estado = models.EstadoActivo
	}
	if in.Disponible != nil {
		c.Disponible = *in.Disponible
	}
	return c
}

type Directory struct {
	store  repository.Store
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func New(store repository.Store, pub events.Publisher, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Directory{store: store, events: pub, logger: logger, now: time.Now}
}

// List returns the contractors matching every set filter dimension, best
// rated first.
func (d *Directory) List(ctx context.Context, f models.ContractorFilter) ([]models.Contractor, error) {
	out, err := d.store.ListContractors(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list contractors: %w", err)
	}
	return out, nil
}

func (d *Directory) Get(ctx context.Context, id int64) (*models.Contractor, error) {
	c, err := d.store.GetContractor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get contractor: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("contractor", id)
	}
	return c, nil
}

// Create registers a contractor and publishes contractor.created.
func (d *Directory) Create(ctx context.Context, in Input) (int64, error) {
	return d.create(ctx, in, events.ContractorCreated)
}

// Register is Create for self-registrations; it publishes contractor.registered.
func (d *Directory) Register(ctx context.Context, in Input) (int64, error) {
	return d.create(ctx, in, events.ContractorRegistered)
}

func (d *Directory) create(ctx context.Context, in Input, evt events.Type) (int64, error) {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return 0, err
	}
	if err := d.checkDNI(ctx, in.DNI, 0); err != nil {
		return 0, err
	}

	c := in.contractor(0)
	id, err := d.store.CreateContractor(ctx, &c)
	if err != nil {
		return 0, fmt.Errorf("create contractor: %w", err)
	}

	d.logger.Info("contractor created", slog.Int64("contractor_id", id), slog.String("event", string(evt)))
	events.Notify(ctx, d.events, d.logger, events.Event{Type: evt, ID: id, ContractorID: id})
	return id, nil
}

// checkDNI rejects a dni already held by a contractor other than self.
func (d *Directory) checkDNI(ctx context.Context, dni string, self int64) error {
	if dni == "" {
		return nil
	}
	existing, err := d.store.GetContractorByDNI(ctx, dni)
	if err != nil {
		return fmt.Errorf("check dni: %w", err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Conflict("dni %s is already registered", dni)
	}
	return nil
}

// Update replaces every writable field of the contractor.
func (d *Directory) Update(ctx context.Context, id int64, in Input) error {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return err
	}
	if _, err := d.Get(ctx, id); err != nil {
		return err
	}
	if err := d.checkDNI(ctx, in.DNI, id); err != nil {
		return err
	}

	c := in.contractor(id)
	if err := d.store.UpdateContractor(ctx, &c); err != nil {
		return fmt.Errorf("update contractor: %w", err)
	}
	d.logger.Info("contractor updated", slog.Int64("contractor_id", id))
	return nil
}

// Delete removes a contractor that has never been assigned. Assignment
// history is kept, so contractors with assignments cannot be deleted.
func (d *Directory) Delete(ctx context.Context, id int64) error {
	return d.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.GetContractor(ctx, id)
		if err != nil {
			return fmt.Errorf("delete contractor: %w", err)
		}
		if c == nil {
			return apperr.NotFound("contractor", id)
		}
		n, err := tx.CountAssignmentsByContractor(ctx, id)
		if err != nil {
			return fmt.Errorf("delete contractor: %w", err)
		}
		if n > 0 {
			return apperr.Conflict("contractor %d has %d assignments", id, n)
		}
		if err := tx.DeleteContractor(ctx, id); err != nil {
			return fmt.Errorf("delete contractor: %w", err)
		}
		d.logger.Info("contractor deleted", slog.Int64("contractor_id", id))
		return nil
	})
}

// SetAvailability is the manual counterpart of the automatic flip made when
// a contractor is assigned.
func (d *Directory) SetAvailability(ctx context.Context, id int64, available bool) error {
	if _, err := d.Get(ctx, id); err != nil {
		return err
	}
	if err := d.store.SetAvailability(ctx, id, available); err != nil {
		return fmt.Errorf("set availability: %w", err)
	}
	d.logger.Info("availability changed", slog.Int64("contractor_id", id), slog.Bool("disponible", available))
	return nil
}

// Stats summarises active contractors. avg_rating is rounded to one decimal.
func (d *Directory) Stats(ctx context.Context) (models.Stats, error) {
	s, err := d.store.ContractorStats(ctx, models.EstadoActivo)
	if err != nil {
		return models.Stats{}, fmt.Errorf("stats: %w", err)
	}
	s.AvgRating = ratings.Round(s.AvgRating, 1)
	return s, nil
}

func (d *Directory) Districts(ctx context.Context) ([]string, error) {
	out, err := d.store.ListDistricts(ctx)
	if err != nil {
		return nil, fmt.Errorf("districts: %w", err)
	}
	return out, nil
}

// LogContact appends an entry to the contractor's contact history.
func (d *Directory) LogContact(ctx context.Context, id int64, tipo, notas string) (int64, error) {
	tipo = strings.TrimSpace(tipo)
	if tipo == "" {
		return 0, apperr.FieldErrors{"tipo": "is required"}
	}
	if len(tipo) > 50 {
		return 0, apperr.FieldErrors{"tipo": "must be at most 50 characters"}
	}
	if _, err := d.Get(ctx, id); err != nil {
		return 0, err
	}
	entryID, err := d.store.CreateContact(ctx, &models.ContactEntry{
		FreelancerID: id,
		Fecha:        d.now().UTC(),
		Tipo:         tipo,
		Notas:        strings.TrimSpace(notas),
	})
	if err != nil {
		return 0, fmt.Errorf("log contact: %w", err)
	}
	return entryID, nil
}

// ContactHistory returns up to limit entries, newest first. A non-positive
// limit selects the default; larger limits are capped.
func (d *Directory) ContactHistory(ctx context.Context, id int64, limit int) ([]models.ContactEntry, error) {
	if limit <= 0 {
		limit = DefaultContactLimit
	}
	if limit > MaxContactLimit {
		limit = MaxContactLimit
	}
	if _, err := d.Get(ctx, id); err != nil {
		return nil, err
	}
	out, err := d.store.ListContacts(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("contact history: %w", err)
	}
	return out, nil
}

// Ratings lists the contractor's ratings with the project each was given on.
func (d *Directory) Ratings(ctx context.Context, id int64) ([]models.RatingWithProject, error) {
	if _, err := d.Get(ctx, id); err != nil {
		return nil, err
	}
	out, err := d.store.ListRatingsByContractor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("contractor ratings: %w", err)
	}
	return out, nil
}
