package models

import "time"

// Domain models matching the database schema in db/migrations/*/0001_init.sql

const (
	EstadoActivo      = "Activo"
	EstadoPlanificado = "Planificado"
	PagoPendiente     = "Pendiente"
)

type Contractor struct {
	ID             int64     `json:"id" db:"id"`
	DNI            *string   `json:"dni,omitempty" db:"dni"`
	Nombre         string    `json:"nombre" db:"nombre"`
	Telefono       string    `json:"telefono" db:"telefono"`
	Email          string    `json:"email,omitempty" db:"email"`
	Distrito       string    `json:"distrito,omitempty" db:"distrito"`
	Skills         string    `json:"skills,omitempty" db:"skills"`
	RatingPromedio float64   `json:"rating_promedio" db:"rating_promedio"`
	Estado         string    `json:"estado" db:"estado"`
	Disponible     bool      `json:"disponible" db:"disponible"`
	Notas          string    `json:"notas,omitempty" db:"notas"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ContractorFilter narrows a directory listing. Empty strings and a nil
// Available leave the corresponding dimension unfiltered.
type ContractorFilter struct {
	Search    string
	Skill     string
	District  string
	Available *bool
}

// ContractorSummary is the contractor view embedded in assignment listings.
type ContractorSummary struct {
	ID             int64   `json:"id"`
	Nombre         string  `json:"nombre"`
	Telefono       string  `json:"telefono"`
	Distrito       string  `json:"distrito,omitempty"`
	RatingPromedio float64 `json:"rating_promedio"`
}

type Project struct {
	ID              int64     `json:"id" db:"id"`
	Nombre          string    `json:"nombre" db:"nombre"`
	Cliente         string    `json:"cliente,omitempty" db:"cliente"`
	Ubicacion       string    `json:"ubicacion,omitempty" db:"ubicacion"`
	FechaInicio     *Date     `json:"fecha_inicio,omitempty" db:"fecha_inicio"`
	FechaFin        *Date     `json:"fecha_fin,omitempty" db:"fecha_fin"`
	MetrosCuadrados *float64  `json:"metros_cuadrados,omitempty" db:"metros_cuadrados"`
	Producto        string    `json:"producto,omitempty" db:"producto"`
	Estado          string    `json:"estado" db:"estado"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// ProjectSummary is the project view embedded in a contractor's history.
type ProjectSummary struct {
	ID        int64  `json:"id"`
	Nombre    string `json:"nombre"`
	Cliente   string `json:"cliente,omitempty"`
	Ubicacion string `json:"ubicacion,omitempty"`
	Estado    string `json:"estado"`
}

type Assignment struct {
	ID           int64    `json:"id" db:"id"`
	ProjectID    int64    `json:"project_id" db:"project_id"`
	FreelancerID int64    `json:"freelancer_id" db:"freelancer_id"`
	FechaInicio  *Date    `json:"fecha_inicio,omitempty" db:"fecha_inicio"`
	FechaFin     *Date    `json:"fecha_fin,omitempty" db:"fecha_fin"`
	TarifaM2     float64  `json:"tarifa_m2" db:"tarifa_m2"`
	MontoTotal   *float64 `json:"monto_total,omitempty" db:"monto_total"`
	EstadoPago   string   `json:"estado_pago" db:"estado_pago"`
}

type AssignmentWithContractor struct {
	Assignment
	Freelancer ContractorSummary `json:"freelancer"`
}

type AssignmentWithProject struct {
	Assignment
	Project ProjectSummary `json:"project"`
}

type Rating struct {
	ID              int64   `json:"id" db:"id"`
	AssignmentID    int64   `json:"assignment_id" db:"assignment_id"`
	Calidad         int     `json:"calidad" db:"calidad"`
	Puntualidad     int     `json:"puntualidad" db:"puntualidad"`
	Instrucciones   int     `json:"instrucciones" db:"instrucciones"`
	Seguridad       int     `json:"seguridad" db:"seguridad"`
	Profesionalismo int     `json:"profesionalismo" db:"profesionalismo"`
	RatingGeneral   float64 `json:"rating_general" db:"rating_general"`
	Comentarios     string  `json:"comentarios,omitempty" db:"comentarios"`
	Fecha           Date    `json:"fecha" db:"fecha"`
}

// RatingWithProject is a rating listed together with the project it was given on.
type RatingWithProject struct {
	Rating
	Proyecto string `json:"proyecto"`
}

type ContactEntry struct {
	ID           int64     `json:"id" db:"id"`
	FreelancerID int64     `json:"freelancer_id" db:"freelancer_id"`
	Fecha        time.Time `json:"fecha" db:"fecha"`
	Tipo         string    `json:"tipo" db:"tipo"`
	Notas        string    `json:"notas,omitempty" db:"notas"`
}

// Operator is a back-office user allowed to call the authenticated API.
type Operator struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Stats summarises the active part of the directory.
type Stats struct {
	Total       int64   `json:"total"`
	Disponibles int64   `json:"disponibles"`
	EnProyecto  int64   `json:"en_proyecto"`
	AvgRating   float64 `json:"avg_rating"`
}
