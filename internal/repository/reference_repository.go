package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ReferenceRepository serves categories, priorities and statuses.
type ReferenceRepository interface {
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetPriority(ctx context.Context, id string) (*domain.Priority, error)
	GetStatus(ctx context.Context, id string) (*domain.Status, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListPriorities(ctx context.Context) ([]domain.Priority, error)
	ListStatuses(ctx context.Context) ([]domain.Status, error)
	CreateCategory(ctx context.Context, category *domain.Category) error
	CreatePriority(ctx context.Context, priority *domain.Priority) error
	CreateStatus(ctx context.Context, status *domain.Status) error
	UpdateCategoryParent(ctx context.Context, id string, parentID *string) error
}

type referenceRepository struct {
	pool *pgxpool.Pool
}

// NewReferenceRepository builds the repository.
func NewReferenceRepository(pool *pgxpool.Pool) ReferenceRepository {
	return &referenceRepository{pool: pool}
}

func (r *referenceRepository) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	const query = `
        SELECT id, name, description, parent_id, default_team_id, created_at
        FROM categories WHERE id=$1`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Description, &c.ParentID, &c.DefaultTeamID, &c.CreatedAt,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &c, nil
}

func (r *referenceRepository) GetPriority(ctx context.Context, id string) (*domain.Priority, error) {
	const query = `
        SELECT id, name, response_sla_hours, resolution_sla_hours, sort_order
        FROM priorities WHERE id=$1`
	var p domain.Priority
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.ResponseSLAHours, &p.ResolutionSLAHours, &p.SortOrder,
	); err != nil {
		return nil, mapPgError(err)
	}
	return &p, nil
}

func (r *referenceRepository) GetStatus(ctx context.Context, id string) (*domain.Status, error) {
	const query = `SELECT id, name, is_final, sort_order FROM statuses WHERE id=$1`
	var s domain.Status
	if err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.IsFinal, &s.SortOrder); err != nil {
		return nil, mapPgError(err)
	}
	return &s, nil
}

func (r *referenceRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `
        SELECT id, name, description, parent_id, default_team_id, created_at
        FROM categories ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ParentID, &c.DefaultTeamID, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *referenceRepository) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	const query = `
        SELECT id, name, response_sla_hours, resolution_sla_hours, sort_order
        FROM priorities ORDER BY sort_order`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Priority{}
	for rows.Next() {
		var p domain.Priority
		if err := rows.Scan(&p.ID, &p.Name, &p.ResponseSLAHours, &p.ResolutionSLAHours, &p.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *referenceRepository) ListStatuses(ctx context.Context) ([]domain.Status, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, is_final, sort_order FROM statuses ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Status{}
	for rows.Next() {
		var s domain.Status
		if err := rows.Scan(&s.ID, &s.Name, &s.IsFinal, &s.SortOrder); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *referenceRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	const query = `
        INSERT INTO categories (id, name, description, parent_id, default_team_id, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.ParentID, c.DefaultTeamID, c.CreatedAt)
	return mapPgError(err)
}

func (r *referenceRepository) CreatePriority(ctx context.Context, p *domain.Priority) error {
	const query = `
        INSERT INTO priorities (id, name, response_sla_hours, resolution_sla_hours, sort_order)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.ResponseSLAHours, p.ResolutionSLAHours, p.SortOrder)
	return mapPgError(err)
}

func (r *referenceRepository) CreateStatus(ctx context.Context, s *domain.Status) error {
	const query = `INSERT INTO statuses (id, name, is_final, sort_order) VALUES ($1,$2,$3,$4)`
	_, err := r.pool.Exec(ctx, query, s.ID, s.Name, s.IsFinal, s.SortOrder)
	return mapPgError(err)
}

func (r *referenceRepository) UpdateCategoryParent(ctx context.Context, id string, parentID *string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE categories SET parent_id=$1 WHERE id=$2`, parentID, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
