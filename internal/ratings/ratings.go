// Package ratings scores completed assignments and keeps each contractor's
// average rating in step with the ratings stored for them.
package ratings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/events"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/validation"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository"
)

// Dimensions are the five integer scores given for one assignment.
type Dimensions struct {
	Calidad         int `json:"calidad" validate:"min=1,max=5"`
	Puntualidad     int `json:"puntualidad" validate:"min=1,max=5"`
	Instrucciones   int `json:"instrucciones" validate:"min=1,max=5"`
	Seguridad       int `json:"seguridad" validate:"min=1,max=5"`
	Profesionalismo int `json:"profesionalismo" validate:"min=1,max=5"`
}

// Validate reports every dimension outside [1,5]. A missing dimension decodes
// as zero and is rejected the same way.
func (d Dimensions) Validate() error {
	return validation.Struct(d)
}

// Composite is the mean of the five dimensions rounded to two decimals.
func Composite(d Dimensions) float64 {
	sum := d.Calidad + d.Puntualidad + d.Instrucciones + d.Seguridad + d.Profesionalismo
	return Round(float64(sum)/5, 2)
}

// Average is the arithmetic mean of values rounded to two decimals. The
// second result is false when values is empty.
func Average(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Round(sum/float64(len(values)), 2), true
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}

// Submission is a rating for one assignment.
type Submission struct {
	Dimensions
	Comentarios string       `json:"comentarios"`
	Fecha       *models.Date `json:"fecha"`
}

// Aggregator stores ratings and recomputes contractor averages.
type Aggregator struct {
	store  repository.Store
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewAggregator(store repository.Store, pub events.Publisher, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Aggregator{store: store, events: pub, logger: logger, now: time.Now}
}

// Submit stores a rating for the assignment and refreshes the average of the
// contractor who worked it. Both writes commit together or not at all. An
// assignment accepts a single rating.
func (a *Aggregator) Submit(ctx context.Context, assignmentID int64, sub Submission) (int64, error) {
	if err := sub.Validate(); err != nil {
		return 0, err
	}

	fecha := models.NewDate(a.now())
	if sub.Fecha != nil && !sub.Fecha.IsZero() {
		fecha = *sub.Fecha
	}
	r := &models.Rating{
		AssignmentID:    assignmentID,
		Calidad:         sub.Calidad,
		Puntualidad:     sub.Puntualidad,
		Instrucciones:   sub.Instrucciones,
		Seguridad:       sub.Seguridad,
		Profesionalismo: sub.Profesionalismo,
		RatingGeneral:   Composite(sub.Dimensions),
		Comentarios:     strings.TrimSpace(sub.Comentarios),
		Fecha:           fecha,
	}

	var (
		id     int64
		asg    *models.Assignment
		newAvg float64
	)
	err := a.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		asg, err = tx.GetAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if asg == nil {
			return apperr.NotFound("assignment", assignmentID)
		}
		rated, err := tx.RatingExistsForAssignment(ctx, assignmentID)
		if err != nil {
			return err
		}
		if rated {
			return apperr.Conflict("assignment %d already has a rating", assignmentID)
		}
		if id, err = tx.CreateRating(ctx, r); err != nil {
			return err
		}
		newAvg, _, err = recompute(ctx, tx, asg.FreelancerID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("submit rating: %w", err)
	}

	a.logger.Info("rating submitted",
		slog.Int64("rating_id", id),
		slog.Int64("assignment_id", assignmentID),
		slog.Int64("contractor_id", asg.FreelancerID),
		slog.Float64("rating_general", r.RatingGeneral),
		slog.Float64("rating_promedio", newAvg),
	)
	events.Notify(ctx, a.events, a.logger, events.Event{
		Type: events.RatingSubmitted, ID: id, ContractorID: asg.FreelancerID, ProjectID: asg.ProjectID, Rating: r.RatingGeneral,
	})
	return id, nil
}

// Recompute sets the contractor's average to the mean of their stored
// ratings. With no ratings the current value is left untouched and updated
// is false.
func (a *Aggregator) Recompute(ctx context.Context, contractorID int64) (avg float64, updated bool, err error) {
	err = a.store.WithinTx(ctx, func(tx repository.Store) error {
		c, err := tx.GetContractor(ctx, contractorID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.NotFound("contractor", contractorID)
		}
		avg, updated, err = recompute(ctx, tx, contractorID)
		if err == nil && !updated {
			avg = c.RatingPromedio
		}
		return err
	})
	if err != nil {
		return 0, false, fmt.Errorf("recompute rating: %w", err)
	}
	if updated {
		a.logger.Info("rating recomputed", slog.Int64("contractor_id", contractorID), slog.Float64("rating_promedio", avg))
	}
	return avg, updated, nil
}

func recompute(ctx context.Context, s repository.Store, contractorID int64) (float64, bool, error) {
	values, err := s.ListRatingGeneralsByContractor(ctx, contractorID)
	if err != nil {
		return 0, false, err
	}
	avg, ok := Average(values)
	if !ok {
		return 0, false, nil
	}
	if err := s.SetAverageRating(ctx, contractorID, avg); err != nil {
		return 0, false, err
	}
	return avg, true, nil
}
