package repository

import (
	"context"

	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Getters return (nil, nil) when the row does not exist.

type ContractorRepo interface {
	CreateContractor(ctx context.Context, c *models.Contractor) (int64, error)
	GetContractor(ctx context.Context, id int64) (*models.Contractor, error)
	GetContractorByDNI(ctx context.Context, dni string) (*models.Contractor, error)
	ListContractors(ctx context.Context, f models.ContractorFilter) ([]models.Contractor, error)
	UpdateContractor(ctx context.Context, c *models.Contractor) error
	DeleteContractor(ctx context.Context, id int64) error
	SetAvailability(ctx context.Context, id int64, available bool) error
	SetAverageRating(ctx context.Context, id int64, avg float64) error
	ContractorStats(ctx context.Context, estado string) (models.Stats, error)
	ListDistricts(ctx context.Context) ([]string, error)
}

type ProjectRepo interface {
	CreateProject(ctx context.Context, p *models.Project) (int64, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListProjectsByStatus(ctx context.Context, estado, ubicacion string) ([]models.Project, error)
}

type AssignmentRepo interface {
	CreateAssignment(ctx context.Context, a *models.Assignment) (int64, error)
	GetAssignment(ctx context.Context, id int64) (*models.Assignment, error)
	ListAssignmentsByProject(ctx context.Context, projectID int64) ([]models.AssignmentWithContractor, error)
	ListAssignmentsByContractor(ctx context.Context, contractorID int64) ([]models.AssignmentWithProject, error)
	CountAssignmentsByContractor(ctx context.Context, contractorID int64) (int64, error)
}

type RatingRepo interface {
	CreateRating(ctx context.Context, r *models.Rating) (int64, error)
	RatingExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error)
	ListRatingsByContractor(ctx context.Context, contractorID int64) ([]models.RatingWithProject, error)
	ListRatingGeneralsByContractor(ctx context.Context, contractorID int64) ([]float64, error)
}

type ContactRepo interface {
	CreateContact(ctx context.Context, e *models.ContactEntry) (int64, error)
	ListContacts(ctx context.Context, contractorID int64, limit int) ([]models.ContactEntry, error)
}

type OperatorRepo interface {
	CreateOperator(ctx context.Context, o *models.Operator) (int64, error)
	GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error)
}

// Store groups every repository behind one handle. WithinTx runs fn against a
// Store bound to a single transaction; fn's error rolls the transaction back.
type Store interface {
	ContractorRepo
	ProjectRepo
	AssignmentRepo
	RatingRepo
	ContactRepo
	OperatorRepo

	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
