package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/assignments"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/config"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/db"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/directory"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/events"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/portal"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/projects"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/ratings"
	"github.com/adolfosalasgomez3011/luxpro-apps/internal/repository/sqlstore"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, d *db.DB, pub events.Publisher) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(TimeoutMiddleware(cfg.APITimeout))

	// Repository and services
	store := sqlstore.New(d, logger)
	dir := directory.New(store, pub, logger)
	reg := projects.New(store, logger)
	lc := assignments.New(store, pub, logger)
	agg := ratings.NewAggregator(store, pub, logger)
	pt, err := portal.New(dir, reg, logger)
	if err != nil {
		return nil, fmt.Errorf("portal: %w", err)
	}

	// Create handlers
	systemHandler := &SystemHandler{DB: d}
	authHandler := NewAuthHandler(store, cfg.JWTSecret, cfg.TokenDuration)
	contractors := NewContractorsHandler(dir, agg, lc)
	projectsHandler := NewProjectsHandler(reg, lc, agg)
	portalHandler := NewPortalHandler(pt)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods(http.MethodGet)
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods(http.MethodPost)
	r.HandleFunc("/portal/register", portalHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/portal/opportunities", portalHandler.Opportunities).Methods(http.MethodGet)

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods(http.MethodPost)

	apiV1.HandleFunc("/contractors", contractors.List).Methods(http.MethodGet)
	apiV1.HandleFunc("/contractors", contractors.Create).Methods(http.MethodPost)
	apiV1.HandleFunc("/contractors/{id}", contractors.Get).Methods(http.MethodGet)
	apiV1.HandleFunc("/contractors/{id}", contractors.Update).Methods(http.MethodPut)
	apiV1.HandleFunc("/contractors/{id}", contractors.Delete).Methods(http.MethodDelete)
	apiV1.HandleFunc("/contractors/{id}/availability", contractors.SetAvailability).Methods(http.MethodPatch)
	apiV1.HandleFunc("/contractors/{id}/contacts", contractors.LogContact).Methods(http.MethodPost)
	apiV1.HandleFunc("/contractors/{id}/contacts", contractors.Contacts).Methods(http.MethodGet)
	apiV1.HandleFunc("/contractors/{id}/ratings", contractors.Ratings).Methods(http.MethodGet)
	apiV1.HandleFunc("/contractors/{id}/projects", contractors.Projects).Methods(http.MethodGet)
	apiV1.HandleFunc("/contractors/{id}/recompute", contractors.Recompute).Methods(http.MethodPost)
	apiV1.HandleFunc("/stats", contractors.Stats).Methods(http.MethodGet)
	apiV1.HandleFunc("/districts", contractors.Districts).Methods(http.MethodGet)

	apiV1.HandleFunc("/projects", projectsHandler.List).Methods(http.MethodGet)
	apiV1.HandleFunc("/projects", projectsHandler.Create).Methods(http.MethodPost)
	apiV1.HandleFunc("/projects/{id}", projectsHandler.Get).Methods(http.MethodGet)
	apiV1.HandleFunc("/projects/{id}/assignments", projectsHandler.Assignments).Methods(http.MethodGet)
	apiV1.HandleFunc("/projects/{id}/assignments", projectsHandler.Assign).Methods(http.MethodPost)
	apiV1.HandleFunc("/assignments/{id}/ratings", projectsHandler.Rate).Methods(http.MethodPost)

	return r, nil
}
