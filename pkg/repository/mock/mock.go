// Package mock provides an in-memory repository.Store for service and handler tests.
package mock

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adolfosalasgomez3011/luxpro-apps/internal/apperr"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/models"
	"github.com/adolfosalasgomez3011/luxpro-apps/pkg/repository"
)

var _ repository.Store = (*Store)(nil)

type state struct {
	contractors map[int64]models.Contractor
	projects    map[int64]models.Project
	assignments map[int64]models.Assignment
	ratings     map[int64]models.Rating
	contacts    map[int64]models.ContactEntry
	operators   map[int64]models.Operator
	nextID      int64
}

func (s *state) clone() state {
	c := state{
		contractors: make(map[int64]models.Contractor, len(s.contractors)),
		projects:    make(map[int64]models.Project, len(s.projects)),
		assignments: make(map[int64]models.Assignment, len(s.assignments)),
		ratings:     make(map[int64]models.Rating, len(s.ratings)),
		contacts:    make(map[int64]models.ContactEntry, len(s.contacts)),
		operators:   make(map[int64]models.Operator, len(s.operators)),
		nextID:      s.nextID,
	}
	for k, v := range s.contractors {
		c.contractors[k] = v
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.ratings {
		c.ratings[k] = v
	}
	for k, v := range s.contacts {
		c.contacts[k] = v
	}
	for k, v := range s.operators {
		c.operators[k] = v
	}
	return c
}

// Store keeps every entity in maps. Setting Err makes every call fail with
// it; FailOn fails only the named methods.
type Store struct {
	mu     sync.Mutex
	st     state
	Err    error
	FailOn map[string]error

	// Calls counts method invocations by name.
	Calls map[string]int
}

func NewStore() *Store {
	s := &Store{Calls: map[string]int{}, FailOn: map[string]error{}}
	s.st = (&state{}).clone()
	return s
}

func (s *Store) enter(name string) error {
	s.Calls[name]++
	if err, ok := s.FailOn[name]; ok {
		return err
	}
	return s.Err
}

func (s *Store) id() int64 {
	s.st.nextID++
	return s.st.nextID
}

// WithinTx restores the previous state when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	if err := s.enter("WithinTx"); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) CreateContractor(ctx context.Context, c *models.Contractor) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateContractor"); err != nil {
		return 0, err
	}
	if c.DNI != nil && *c.DNI != "" {
		for _, existing := range s.st.contractors {
			if existing.DNI != nil && *existing.DNI == *c.DNI {
				return 0, apperr.Conflict("dni %s already registered", *c.DNI)
			}
		}
	}
	cp := *c
	cp.ID = s.id()
	cp.CreatedAt = time.Now().UTC()
	s.st.contractors[cp.ID] = cp
	return cp.ID, nil
}

func (s *Store) GetContractor(ctx context.Context, id int64) (*models.Contractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetContractor"); err != nil {
		return nil, err
	}
	c, ok := s.st.contractors[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *Store) GetContractorByDNI(ctx context.Context, dni string) (*models.Contractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetContractorByDNI"); err != nil {
		return nil, err
	}
	for _, c := range s.st.contractors {
		if c.DNI != nil && *c.DNI == dni {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListContractors(ctx context.Context, f models.ContractorFilter) ([]models.Contractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListContractors"); err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))
	skill := strings.ToLower(strings.TrimSpace(f.Skill))
	district := strings.TrimSpace(f.District)

	out := []models.Contractor{}
	for _, c := range s.st.contractors {
		if search != "" && !strings.Contains(strings.ToLower(c.Nombre), search) {
			continue
		}
		if skill != "" && !strings.Contains(strings.ToLower(c.Skills), skill) {
			continue
		}
		if district != "" && c.Distrito != district {
			continue
		}
		if f.Available != nil && c.Disponible != *f.Available {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RatingPromedio != out[j].RatingPromedio {
			return out[i].RatingPromedio > out[j].RatingPromedio
		}
		if out[i].Nombre != out[j].Nombre {
			return out[i].Nombre < out[j].Nombre
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateContractor(ctx context.Context, c *models.Contractor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateContractor"); err != nil {
		return err
	}
	prev, ok := s.st.contractors[c.ID]
	if !ok {
		return nil
	}
	cp := *c
	cp.CreatedAt = prev.CreatedAt
	s.st.contractors[c.ID] = cp
	return nil
}

func (s *Store) DeleteContractor(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteContractor"); err != nil {
		return err
	}
	delete(s.st.contractors, id)
	for k, e := range s.st.contacts {
		if e.FreelancerID == id {
			delete(s.st.contacts, k)
		}
	}
	return nil
}

func (s *Store) SetAvailability(ctx context.Context, id int64, available bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetAvailability"); err != nil {
		return err
	}
	if c, ok := s.st.contractors[id]; ok {
		c.Disponible = available
		s.st.contractors[id] = c
	}
	return nil
}

func (s *Store) SetAverageRating(ctx context.Context, id int64, avg float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("SetAverageRating"); err != nil {
		return err
	}
	if c, ok := s.st.contractors[id]; ok {
		c.RatingPromedio = avg
		s.st.contractors[id] = c
	}
	return nil
}

func (s *Store) ContractorStats(ctx context.Context, estado string) (models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ContractorStats"); err != nil {
		return models.Stats{}, err
	}
	var st models.Stats
	var sum float64
	for _, c := range s.st.contractors {
		if c.Estado != estado {
			continue
		}
		st.Total++
		if c.Disponible {
			st.Disponibles++
		}
		sum += c.RatingPromedio
	}
	st.EnProyecto = st.Total - st.Disponibles
	if st.Total > 0 {
		st.AvgRating = sum / float64(st.Total)
	}
	return st, nil
}

func (s *Store) ListDistricts(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListDistricts"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, c := range s.st.contractors {
		if c.Distrito != "" && !seen[c.Distrito] {
			seen[c.Distrito] = true
			out = append(out, c.Distrito)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateProject"); err != nil {
		return 0, err
	}
	cp := *p
	cp.ID = s.id()
	cp.CreatedAt = time.Now().UTC()
	s.st.projects[cp.ID] = cp
	return cp.ID, nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetProject"); err != nil {
		return nil, err
	}
	p, ok := s.st.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListProjects"); err != nil {
		return nil, err
	}
	out := []models.Project{}
	for _, p := range s.st.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) ListProjectsByStatus(ctx context.Context, estado, ubicacion string) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListProjectsByStatus"); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(ubicacion))
	out := []models.Project{}
	for _, p := range s.st.projects {
		if p.Estado != estado {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Ubicacion), needle) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreateAssignment(ctx context.Context, a *models.Assignment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateAssignment"); err != nil {
		return 0, err
	}
	if _, ok := s.st.projects[a.ProjectID]; !ok {
		return 0, apperr.Conflict("project %d does not exist", a.ProjectID)
	}
	if _, ok := s.st.contractors[a.FreelancerID]; !ok {
		return 0, apperr.Conflict("contractor %d does not exist", a.FreelancerID)
	}
	cp := *a
	cp.ID = s.id()
	s.st.assignments[cp.ID] = cp
	return cp.ID, nil
}

func (s *Store) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetAssignment"); err != nil {
		return nil, err
	}
	a, ok := s.st.assignments[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) sortedAssignments(keep func(models.Assignment) bool) []models.Assignment {
	out := []models.Assignment{}
	for _, a := range s.st.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListAssignmentsByProject(ctx context.Context, projectID int64) ([]models.AssignmentWithContractor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAssignmentsByProject"); err != nil {
		return nil, err
	}
	out := []models.AssignmentWithContractor{}
	for _, a := range s.sortedAssignments(func(a models.Assignment) bool { return a.ProjectID == projectID }) {
		c := s.st.contractors[a.FreelancerID]
		out = append(out, models.AssignmentWithContractor{
			Assignment: a,
			Freelancer: models.ContractorSummary{ID: c.ID, Nombre: c.Nombre, Telefono: c.Telefono, Distrito: c.Distrito, RatingPromedio: c.RatingPromedio},
		})
	}
	return out, nil
}

func (s *Store) ListAssignmentsByContractor(ctx context.Context, contractorID int64) ([]models.AssignmentWithProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListAssignmentsByContractor"); err != nil {
		return nil, err
	}
	out := []models.AssignmentWithProject{}
	list := s.sortedAssignments(func(a models.Assignment) bool { return a.FreelancerID == contractorID })
	for i := len(list) - 1; i >= 0; i-- {
		a := list[i]
		p := s.st.projects[a.ProjectID]
		out = append(out, models.AssignmentWithProject{
			Assignment: a,
			Project:    models.ProjectSummary{ID: p.ID, Nombre: p.Nombre, Cliente: p.Cliente, Ubicacion: p.Ubicacion, Estado: p.Estado},
		})
	}
	return out, nil
}

func (s *Store) CountAssignmentsByContractor(ctx context.Context, contractorID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CountAssignmentsByContractor"); err != nil {
		return 0, err
	}
	var n int64
	for _, a := range s.st.assignments {
		if a.FreelancerID == contractorID {
			n++
		}
	}
	return n, nil
}

func (s *Store) CreateRating(ctx context.Context, r *models.Rating) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateRating"); err != nil {
		return 0, err
	}
	for _, existing := range s.st.ratings {
		if existing.AssignmentID == r.AssignmentID {
			return 0, apperr.Conflict("assignment %d already rated", r.AssignmentID)
		}
	}
	cp := *r
	cp.ID = s.id()
	s.st.ratings[cp.ID] = cp
	return cp.ID, nil
}

func (s *Store) RatingExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("RatingExistsForAssignment"); err != nil {
		return false, err
	}
	for _, r := range s.st.ratings {
		if r.AssignmentID == assignmentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) contractorRatings(contractorID int64) []models.Rating {
	out := []models.Rating{}
	for _, r := range s.st.ratings {
		if a, ok := s.st.assignments[r.AssignmentID]; ok && a.FreelancerID == contractorID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ListRatingsByContractor(ctx context.Context, contractorID int64) ([]models.RatingWithProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListRatingsByContractor"); err != nil {
		return nil, err
	}
	list := s.contractorRatings(contractorID)
	out := make([]models.RatingWithProject, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		r := list[i]
		a := s.st.assignments[r.AssignmentID]
		out = append(out, models.RatingWithProject{Rating: r, Proyecto: s.st.projects[a.ProjectID].Nombre})
	}
	return out, nil
}

func (s *Store) ListRatingGeneralsByContractor(ctx context.Context, contractorID int64) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListRatingGeneralsByContractor"); err != nil {
		return nil, err
	}
	var out []float64
	for _, r := range s.contractorRatings(contractorID) {
		out = append(out, r.RatingGeneral)
	}
	return out, nil
}

func (s *Store) CreateContact(ctx context.Context, e *models.ContactEntry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateContact"); err != nil {
		return 0, err
	}
	cp := *e
	cp.ID = s.id()
	if cp.Fecha.IsZero() {
		cp.Fecha = time.Now().UTC()
	}
	s.st.contacts[cp.ID] = cp
	return cp.ID, nil
}

func (s *Store) ListContacts(ctx context.Context, contractorID int64, limit int) ([]models.ContactEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListContacts"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	out := []models.ContactEntry{}
	for _, e := range s.st.contacts {
		if e.FreelancerID == contractorID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Fecha.Equal(out[j].Fecha) {
			return out[i].Fecha.After(out[j].Fecha)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateOperator(ctx context.Context, o *models.Operator) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateOperator"); err != nil {
		return 0, err
	}
	email := strings.ToLower(strings.TrimSpace(o.Email))
	for _, existing := range s.st.operators {
		if existing.Email == email {
			return 0, apperr.Conflict("operator %s already exists", email)
		}
	}
	cp := *o
	cp.Email = email
	cp.ID = s.id()
	cp.CreatedAt = time.Now().UTC()
	s.st.operators[cp.ID] = cp
	return cp.ID, nil
}

func (s *Store) GetOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetOperatorByEmail"); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, o := range s.st.operators {
		if o.Email == email {
			return &o, nil
		}
	}
	return nil, nil
}
