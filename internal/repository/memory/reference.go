package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type referenceRepo struct{ s *Store }

func (r *referenceRepo) GetCategory(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.ParentID = cloneStr(c.ParentID)
	c.DefaultTeamID = cloneStr(c.DefaultTeamID)
	return &c, nil
}

func (r *referenceRepo) GetPriority(_ context.Context, id string) (*domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.priorities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *referenceRepo) GetStatus(_ context.Context, id string) (*domain.Status, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st, ok := r.s.statuses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &st, nil
}

func (r *referenceRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *referenceRepo) ListPriorities(_ context.Context) ([]domain.Priority, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Priority, 0, len(r.s.priorities))
	for _, p := range r.s.priorities {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (r *referenceRepo) ListStatuses(_ context.Context) ([]domain.Status, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Status, 0, len(r.s.statuses))
	for _, st := range r.s.statuses {
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SortOrder < result[j].SortOrder })
	return result, nil
}

func (r *referenceRepo) CreateCategory(_ context.Context, c *domain.Category) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&c.ID)
	if _, ok := s.categories[c.ID]; ok {
		return repository.ErrDuplicate
	}
	if !refExists(s.categories, c.ParentID) || !refExists(s.teams, c.DefaultTeamID) {
		return repository.ErrInvalidReference
	}
	stored := *c
	stored.ParentID = cloneStr(c.ParentID)
	stored.DefaultTeamID = cloneStr(c.DefaultTeamID)
	s.categories[c.ID] = stored
	return nil
}

func (r *referenceRepo) CreatePriority(_ context.Context, p *domain.Priority) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&p.ID)
	for _, existing := range s.priorities {
		if existing.ID == p.ID || existing.Name == p.Name {
			return repository.ErrDuplicate
		}
	}
	s.priorities[p.ID] = *p
	return nil
}

func (r *referenceRepo) CreateStatus(_ context.Context, st *domain.Status) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&st.ID)
	for _, existing := range s.statuses {
		if existing.ID == st.ID || existing.Name == st.Name {
			return repository.ErrDuplicate
		}
	}
	s.statuses[st.ID] = *st
	return nil
}

func (r *referenceRepo) UpdateCategoryParent(_ context.Context, id string, parentID *string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.categories[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !refExists(s.categories, parentID) {
		return repository.ErrInvalidReference
	}
	c.ParentID = cloneStr(parentID)
	s.categories[id] = c
	return nil
}
