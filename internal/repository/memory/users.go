package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type userRepo struct{ s *Store }

type departmentRepo struct{ s *Store }

type teamRepo struct{ s *Store }

func cloneUser(u domain.User) domain.User {
	u.DepartmentID = cloneStr(u.DepartmentID)
	u.TeamID = cloneStr(u.TeamID)
	return u
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&user.ID)
	if _, ok := s.users[user.ID]; ok {
		return repository.ErrDuplicate
	}
	if s.emailTaken(user.Email, "") {
		return repository.ErrDuplicate
	}
	if !refExists(s.departments, user.DepartmentID) || !refExists(s.teams, user.TeamID) {
		return repository.ErrInvalidReference
	}
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	if !refExists(s.departments, user.DepartmentID) || !refExists(s.teams, user.TeamID) {
		return repository.ErrInvalidReference
	}
	s.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(user)
	return &out, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, user := range r.s.users {
		if strings.EqualFold(user.Email, email) {
			out := cloneUser(user)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) emailTaken(email, exceptID string) bool {
	for id, user := range s.users {
		if id != exceptID && strings.EqualFold(user.Email, email) {
			return true
		}
	}
	return false
}

func (r *departmentRepo) Create(_ context.Context, dept *domain.Department) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&dept.ID)
	for _, existing := range s.departments {
		if existing.ID == dept.ID || existing.Name == dept.Name {
			return repository.ErrDuplicate
		}
	}
	s.departments[dept.ID] = *dept
	return nil
}

func (r *departmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	dept, ok := r.s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &dept, nil
}

func (r *departmentRepo) List(_ context.Context) ([]domain.Department, error) {
	return r.list(false), nil
}

func (r *departmentRepo) ListActive(_ context.Context) ([]domain.Department, error) {
	return r.list(true), nil
}

func (r *departmentRepo) list(activeOnly bool) []domain.Department {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Department{}
	for _, dept := range r.s.departments {
		if dept.IsActive || !activeOnly {
			result = append(result, dept)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (r *teamRepo) Create(_ context.Context, team *domain.Team) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&team.ID)
	if _, ok := s.teams[team.ID]; ok {
		return repository.ErrDuplicate
	}
	if !refExists(s.departments, team.DepartmentID) {
		return repository.ErrInvalidReference
	}
	team.DepartmentID = cloneStr(team.DepartmentID)
	s.teams[team.ID] = *team
	return nil
}

func (r *teamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	team, ok := r.s.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &team, nil
}

func (r *teamRepo) ListActive(_ context.Context) ([]domain.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Team{}
	for _, team := range r.s.teams {
		if team.IsActive {
			result = append(result, team)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
