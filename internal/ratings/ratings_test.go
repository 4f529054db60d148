package ratings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/events"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/ratings"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository/mock"
)

func TestComposite(t *testing.T) {
	tests := []struct {
		name string
		d    ratings.Dimensions
		want float64
	}{
		{"all_fives", ratings.Dimensions{5, 5, 5, 5, 5}, 5},
		{"all_ones", ratings.Dimensions{1, 1, 1, 1, 1}, 1},
		{"mixed", ratings.Dimensions{5, 4, 5, 4, 5}, 4.6},
		{"low", ratings.Dimensions{3, 2, 2, 1, 3}, 2.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ratings.Composite(tt.d); got != tt.want {
				t.Fatalf("Composite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAverage(t *testing.T) {
	if _, ok := ratings.Average(nil); ok {
		t.Fatalf("expected no average for empty input")
	}
	got, ok := ratings.Average([]float64{4.6, 3.4})
	if !ok || got != 4.0 {
		t.Fatalf("Average = %v, %v", got, ok)
	}
	got, _ = ratings.Average([]float64{5, 4.8, 4.6})
	if got != 4.8 {
		t.Fatalf("Average = %v, want 4.8", got)
	}
	got, _ = ratings.Average([]float64{4.2, 4.4, 5})
	if got != 4.53 {
		t.Fatalf("Average = %v, want 4.53", got)
	}
}

func TestDimensions_Validate(t *testing.T) {
	if err := (ratings.Dimensions{1, 2, 3, 4, 5}).Validate(); err != nil {
		t.Fatalf("expected valid dimensions, got %v", err)
	}
	err := (ratings.Dimensions{Calidad: 6, Puntualidad: 0, Instrucciones: 3, Seguridad: 3, Profesionalismo: -1}).Validate()
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := apperr.Fields(err)
	for _, f := range []string{"calidad", "puntualidad", "profesionalismo"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("expected %s to be rejected, got %v", f, fields)
		}
	}
	if _, ok := fields["instrucciones"]; ok {
		t.Fatalf("instrucciones should be accepted")
	}
}

type recorder struct {
	events.Nop
	got []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.got = append(r.got, e)
	return nil
}

type fixture struct {
	store      *mock.Store
	contractor int64
	asg1, asg2 int64
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := mock.NewStore()
	cid, err := s.CreateContractor(ctx, &models.Contractor{Nombre: "Ana", Telefono: "1", RatingPromedio: 4.0, Estado: models.EstadoActivo})
	if err != nil {
		t.Fatalf("create contractor: %v", err)
	}
	p1, _ := s.CreateProject(ctx, &models.Project{Nombre: "P1", Estado: models.EstadoPlanificado})
	p2, _ := s.CreateProject(ctx, &models.Project{Nombre: "P2", Estado: models.EstadoPlanificado})
	a1, err := s.CreateAssignment(ctx, &models.Assignment{ProjectID: p1, FreelancerID: cid, EstadoPago: models.PagoPendiente})
	if err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	a2, _ := s.CreateAssignment(ctx, &models.Assignment{ProjectID: p2, FreelancerID: cid, EstadoPago: models.PagoPendiente})
	return fixture{store: s, contractor: cid, asg1: a1, asg2: a2}
}

func TestSubmit_UpdatesAverage(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	rec := &recorder{}
	agg := ratings.NewAggregator(f.store, rec, nil)

	id, err := agg.Submit(ctx, f.asg1, ratings.Submission{Dimensions: ratings.Dimensions{5, 4, 5, 4, 5}, Comentarios: " buen acabado "})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected rating id")
	}
	c, _ := f.store.GetContractor(ctx, f.contractor)
	if c.RatingPromedio != 4.6 {
		t.Fatalf("expected average 4.6 after first rating, got %v", c.RatingPromedio)
	}

	if _, err := agg.Submit(ctx, f.asg2, ratings.Submission{Dimensions: ratings.Dimensions{3, 3, 4, 3, 4}}); err != nil {
		t.Fatalf("submit second: %v", err)
	}
	c, _ = f.store.GetContractor(ctx, f.contractor)
	if c.RatingPromedio != 4.0 {
		t.Fatalf("expected average of 4.6 and 3.4 to be 4.0, got %v", c.RatingPromedio)
	}

	list, _ := f.store.ListRatingsByContractor(ctx, f.contractor)
	if len(list) != 2 || list[1].Comentarios != "buen acabado" || list[1].Fecha.IsZero() {
		t.Fatalf("unexpected stored ratings: %#v", list)
	}

	if len(rec.got) != 2 || rec.got[0].Type != events.RatingSubmitted || rec.got[0].ContractorID != f.contractor {
		t.Fatalf("unexpected events: %#v", rec.got)
	}
}

func TestSubmit_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid_dimension_writes_nothing", func(t *testing.T) {
		f := setup(t)
		agg := ratings.NewAggregator(f.store, nil, nil)
		_, err := agg.Submit(ctx, f.asg1, ratings.Submission{Dimensions: ratings.Dimensions{6, 5, 5, 5, 5}})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if f.store.Calls["CreateRating"] != 0 {
			t.Fatalf("no rating should be written")
		}
	})

	t.Run("unknown_assignment", func(t *testing.T) {
		f := setup(t)
		agg := ratings.NewAggregator(f.store, nil, nil)
		_, err := agg.Submit(ctx, 999, ratings.Submission{Dimensions: ratings.Dimensions{5, 5, 5, 5, 5}})
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("second_rating_conflicts", func(t *testing.T) {
		f := setup(t)
		agg := ratings.NewAggregator(f.store, nil, nil)
		if _, err := agg.Submit(ctx, f.asg1, ratings.Submission{Dimensions: ratings.Dimensions{5, 5, 5, 5, 5}}); err != nil {
			t.Fatalf("first submit: %v", err)
		}
		_, err := agg.Submit(ctx, f.asg1, ratings.Submission{Dimensions: ratings.Dimensions{1, 1, 1, 1, 1}})
		if !errors.Is(err, apperr.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		c, _ := f.store.GetContractor(ctx, f.contractor)
		if c.RatingPromedio != 5 {
			t.Fatalf("average must not change on rejected rating, got %v", c.RatingPromedio)
		}
	})

	t.Run("failed_average_update_rolls_back_rating", func(t *testing.T) {
		f := setup(t)
		f.store.FailOn["SetAverageRating"] = apperr.ErrStoreUnavailable
		agg := ratings.NewAggregator(f.store, nil, nil)
		_, err := agg.Submit(ctx, f.asg1, ratings.Submission{Dimensions: ratings.Dimensions{5, 5, 5, 5, 5}})
		if !errors.Is(err, apperr.ErrStoreUnavailable) {
			t.Fatalf("expected store unavailable, got %v", err)
		}
		delete(f.store.FailOn, "SetAverageRating")
		exists, _ := f.store.RatingExistsForAssignment(ctx, f.asg1)
		if exists {
			t.Fatalf("rating must be rolled back with the failed average update")
		}
	})
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	agg := ratings.NewAggregator(f.store, nil, nil)

	avg, updated, err := agg.Recompute(ctx, f.contractor)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if updated || avg != 4.0 {
		t.Fatalf("no ratings: expected untouched 4.0, got %v updated=%v", avg, updated)
	}

	// a manual edit drifts from the stored ratings until recomputed
	if _, err := agg.Submit(ctx, f.asg1, ratings.Submission{Dimensions: ratings.Dimensions{4, 4, 4, 4, 4}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := f.store.SetAverageRating(ctx, f.contractor, 1.5); err != nil {
		t.Fatalf("set average: %v", err)
	}
	avg, updated, err = agg.Recompute(ctx, f.contractor)
	if err != nil || !updated || avg != 4.0 {
		t.Fatalf("recompute: %v updated=%v err=%v", avg, updated, err)
	}
	c, _ := f.store.GetContractor(ctx, f.contractor)
	if c.RatingPromedio != 4.0 {
		t.Fatalf("expected stored average 4.0, got %v", c.RatingPromedio)
	}

	if _, _, err := agg.Recompute(ctx, 999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmit_AveragesWithPriorRatings(t *testing.T) {
	ctx := context.Background()
	s := mock.NewStore()
	cid, _ := s.CreateContractor(ctx, &models.Contractor{Nombre: "Carlos", Telefono: "1", Estado: models.EstadoActivo})
	pid, _ := s.CreateProject(ctx, &models.Project{Nombre: "P", Estado: models.EstadoPlanificado})

	var asg []int64
	for i := 0; i < 3; i++ {
		id, err := s.CreateAssignment(ctx, &models.Assignment{ProjectID: pid, FreelancerID: cid, EstadoPago: models.PagoPendiente})
		if err != nil {
			t.Fatalf("create assignment: %v", err)
		}
		asg = append(asg, id)
	}
	for i, prior := range []float64{4.0, 4.8} {
		if _, err := s.CreateRating(ctx, &models.Rating{AssignmentID: asg[i], RatingGeneral: prior}); err != nil {
			t.Fatalf("seed rating: %v", err)
		}
	}

	agg := ratings.NewAggregator(s, nil, nil)
	if _, err := agg.Submit(ctx, asg[2], ratings.Submission{Dimensions: ratings.Dimensions{5, 4, 5, 5, 4}}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	list, _ := s.ListRatingsByContractor(ctx, cid)
	if list[0].RatingGeneral != 4.6 {
		t.Fatalf("expected composite 4.6, got %v", list[0].RatingGeneral)
	}
	c, _ := s.GetContractor(ctx, cid)
	if c.RatingPromedio != 4.47 {
		t.Fatalf("expected average 4.47, got %v", c.RatingPromedio)
	}
}
