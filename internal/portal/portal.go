// Package portal serves the public side of the directory: applicator
// self-registration and the board of open opportunities.
package portal

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/directory"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/projects"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

// OtherDistrict is the district choice that makes the city stand in for it.
const OtherDistrict = "Otro"

const (
	registeredRating = 5.0
	registeredNote   = "Registrado desde Portal de Aplicadores"
)

//go:embed registration.schema.json
var registrationSchema []byte

// Registration is the self-registration payload.
type Registration struct {
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono"`
	DNI      string `json:"dni"`
	Ciudad   string `json:"ciudad"`
	Distrito string `json:"distrito"`
	Email    string `json:"email"`
	Skills   string `json:"skills"`
}

type Portal struct {
	dir    *directory.Directory
	reg    *projects.Registry
	schema *jsonschema.Schema
	logger *slog.Logger
}

// New compiles the embedded registration schema.
func New(dir *directory.Directory, reg *projects.Registry, logger *slog.Logger) (*Portal, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(registrationSchema, rs); err != nil {
		return nil, fmt.Errorf("compile registration schema: %w", err)
	}
	return &Portal{dir: dir, reg: reg, schema: rs, logger: logger}, nil
}

// Register validates payload against the registration schema and creates an
// available contractor seeded with the portal rating.
func (p *Portal) Register(ctx context.Context, payload []byte) (int64, error) {
	keyErrs, err := p.schema.ValidateBytes(ctx, payload)
	if err != nil {
		return 0, apperr.Validation("payload is not valid JSON: %v", err)
	}
	fe := apperr.FieldErrors{}
	for _, ke := range keyErrs {
		fe.Add(fieldOf(ke), ke.Message)
	}
	if err := fe.OrNil(); err != nil {
		return 0, err
	}

	var r Registration
	if err := json.Unmarshal(payload, &r); err != nil {
		return 0, apperr.Validation("decode registration: %v", err)
	}

	distrito := strings.TrimSpace(r.Distrito)
	if strings.EqualFold(distrito, OtherDistrict) {
		distrito = strings.TrimSpace(r.Ciudad)
		if distrito == "" {
			fe.Add("ciudad", "is required when distrito is "+OtherDistrict)
			return 0, fe
		}
	}
	rating := registeredRating
	available := true
	id, err := p.dir.Register(ctx, directory.Input{
		DNI:            r.DNI,
		Nombre:         r.Nombre,
		Telefono:       r.Telefono,
		Email:          r.Email,
		Distrito:       distrito,
		Skills:         r.Skills,
		RatingPromedio: &rating,
		Disponible:     &available,
		Notas:          registeredNote,
	})
	if err != nil {
		return 0, err
	}
	p.logger.Info("applicator registered", slog.Int64("contractor_id", id), slog.String("distrito", distrito))
	return id, nil
}

// Opportunities lists planned projects, optionally filtered by district.
func (p *Portal) Opportunities(ctx context.Context, district string) ([]models.Project, error) {
	return p.reg.Opportunities(ctx, district)
}

// fieldOf names the payload field a schema error refers to. Missing required
// properties are reported on the parent with the name quoted in the message.
func fieldOf(ke jsonschema.KeyError) string {
	if f := strings.Trim(ke.PropertyPath, "/"); f != "" {
		return f
	}
	if i := strings.IndexByte(ke.Message, '"'); i >= 0 {
		if j := strings.IndexByte(ke.Message[i+1:], '"'); j > 0 {
			return ke.Message[i+1 : i+1+j]
		}
	}
	return "payload"
}
