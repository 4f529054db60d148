package portal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/directory"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/portal"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/projects"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository/mock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newPortal(t *testing.T) (*portal.Portal, *mock.Store) {
	t.Helper()
	store := mock.NewStore()
	p, err := portal.New(directory.New(store, nil, nil), projects.New(store, nil), nil)
	require.NoError(t, err)
	return p, store
}

func TestRegister_Success(t *testing.T) {
	p, store := newPortal(t)
	ctx := context.Background()

	id, err := p.Register(ctx, []byte(`{"nombre":"Juan Pérez","telefono":"987654321","dni":"12345678","ciudad":"Lima","distrito":"Ate","skills":"Epóxico"}`))
	require.NoError(t, err)

	c, err := store.GetContractor(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Juan Pérez", c.Nombre)
	assert.Equal(t, "Ate", c.Distrito)
	assert.Equal(t, 5.0, c.RatingPromedio)
	assert.True(t, c.Disponible)
	assert.Equal(t, "Registrado desde Portal de Aplicadores", c.Notas)
	assert.Equal(t, models.EstadoActivo, c.Estado)
}

func TestRegister_OtherDistrictUsesCity(t *testing.T) {
	p, store := newPortal(t)
	ctx := context.Background()

	id, err := p.Register(ctx, []byte(`{"nombre":"Rosa","telefono":"978901234","dni":"CE1234567","ciudad":"Arequipa","distrito":"Otro"}`))
	require.NoError(t, err)
	c, _ := store.GetContractor(ctx, id)
	assert.Equal(t, "Arequipa", c.Distrito)
}

func TestRegister_SchemaErrors(t *testing.T) {
	p, store := newPortal(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"missing_dni", `{"nombre":"A","telefono":"987654321","distrito":"Ate"}`, "dni"},
		{"missing_nombre", `{"telefono":"987654321","dni":"12345678","distrito":"Ate"}`, "nombre"},
		{"bad_phone", `{"nombre":"A","telefono":"abc","dni":"12345678","distrito":"Ate"}`, "telefono"},
		{"short_dni", `{"nombre":"A","telefono":"987654321","dni":"123","distrito":"Ate"}`, "dni"},
		{"wrong_type", `{"nombre":5,"telefono":"987654321","dni":"12345678","distrito":"Ate"}`, "nombre"},
		{"other_without_city", `{"nombre":"A","telefono":"987654321","dni":"12345678","distrito":"Otro"}`, "ciudad"},
		{"other_blank_city", `{"nombre":"A","telefono":"987654321","dni":"12345678","distrito":"otro","ciudad":"  "}`, "ciudad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Register(ctx, []byte(tt.payload))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "expected validation error, got %v", err)
			assert.Contains(t, apperr.Fields(err), tt.field)
		})
	}

	_, err := p.Register(ctx, []byte(`not json`))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Zero(t, store.Calls["CreateContractor"])
}

func TestRegister_DuplicateDNI(t *testing.T) {
	p, _ := newPortal(t)
	ctx := context.Background()
	payload := []byte(`{"nombre":"Ana","telefono":"987123456","dni":"45678901","distrito":"Surco"}`)

	_, err := p.Register(ctx, payload)
	require.NoError(t, err)
	_, err = p.Register(ctx, payload)
	assert.True(t, errors.Is(err, apperr.ErrConflict), "expected conflict, got %v", err)
}

func TestOpportunities(t *testing.T) {
	p, store := newPortal(t)
	ctx := context.Background()
	store.CreateProject(ctx, &models.Project{Nombre: "Almacén", Ubicacion: "Ate", Estado: models.EstadoPlanificado})
	store.CreateProject(ctx, &models.Project{Nombre: "Oficina", Ubicacion: "Surco", Estado: "Completado"})

	got, err := p.Opportunities(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Almacén", got[0].Nombre)
}
