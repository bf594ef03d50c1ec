package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketPage is one page of query results plus the unpaged total.
type TicketPage struct {
	Items      []domain.Ticket
	TotalCount int
	PageNumber int
	PageSize   int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error
	Update(ctx context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	Query(ctx context.Context, filter TicketFilter, page Page) (TicketPage, error)
	// NextSequence atomically increments and returns the counter for dayKey (YYYYMMDD).
	NextSequence(ctx context.Context, dayKey string) (int, error)
	// Stats counts tickets by status id and department id ("" when unset) and
	// counts SLA breaches as of now.
	Stats(ctx context.Context, filter TicketFilter, now time.Time) (*domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, number, title, description, category_id, priority_id, status_id,
               requester_id, assignee_id, team_id, department_id, due_by, resolved_at, closed_at,
               created_at, updated_at, version`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error {
	const query = `
        INSERT INTO tickets (id, number, title, description, category_id, priority_id, status_id,
            requester_id, assignee_id, team_id, department_id, due_by, resolved_at, closed_at,
            created_at, updated_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if ticket.Version == 0 {
		ticket.Version = 1
	}
	if _, err := tx.Exec(ctx, query,
		ticket.ID,
		ticket.Number,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.StatusID,
		ticket.RequesterID,
		ticket.AssigneeID,
		ticket.TeamID,
		ticket.DepartmentID,
		ticket.DueBy,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.Version,
	); err != nil {
		return mapPgError(err)
	}
	if err := insertHistory(ctx, tx, history); err != nil {
		return err
	}
	return mapPgError(tx.Commit(ctx))
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, history ...domain.TicketHistory) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, category_id=$3, priority_id=$4, status_id=$5,
            assignee_id=$6, team_id=$7, department_id=$8, due_by=$9, resolved_at=$10, closed_at=$11,
            updated_at=$12, version=version+1
        WHERE id=$13 AND version=$14`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.StatusID,
		ticket.AssigneeID,
		ticket.TeamID,
		ticket.DepartmentID,
		ticket.DueBy,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.UpdatedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	if err := insertHistory(ctx, tx, history); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapPgError(err)
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE number=$1`, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) Query(ctx context.Context, filter TicketFilter, page Page) (TicketPage, error) {
	page = page.Normalize()
	result := TicketPage{Items: []domain.Ticket{}, PageNumber: page.Number, PageSize: page.Size}

	where, args := filter.whereClause("", nil)
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE `+where, args...).Scan(&result.TotalCount); err != nil {
		return result, err
	}
	if result.TotalCount == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC, number DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, page.Size, page.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return result, err
	}
	defer rows.Close()
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) NextSequence(ctx context.Context, dayKey string) (int, error) {
	const query = `
        INSERT INTO ticket_sequences (day_key, last_value) VALUES ($1, 1)
        ON CONFLICT (day_key) DO UPDATE SET last_value = ticket_sequences.last_value + 1
        RETURNING last_value`
	var next int
	if err := r.pool.QueryRow(ctx, query, dayKey).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *ticketRepository) Stats(ctx context.Context, filter TicketFilter, now time.Time) (*domain.TicketStats, error) {
	stats := &domain.TicketStats{ByStatus: map[string]int{}, ByDepartment: map[string]int{}}
	where, args := filter.whereClause("t.", nil)

	rows, err := r.pool.Query(ctx, `SELECT t.status_id, COUNT(*) FROM tickets t WHERE `+where+` GROUP BY t.status_id`, args...)
	if err != nil {
		return nil, err
	}
	if err := collectCounts(rows, stats.ByStatus); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx, `SELECT COALESCE(t.department_id, ''), COUNT(*) FROM tickets t WHERE `+where+` GROUP BY 1`, args...)
	if err != nil {
		return nil, err
	}
	if err := collectCounts(rows, stats.ByDepartment); err != nil {
		return nil, err
	}
	for _, n := range stats.ByStatus {
		stats.Total += n
	}

	breachArgs := append(append([]any{}, args...), now)
	breachQuery := fmt.Sprintf(`
        SELECT COUNT(*) FROM tickets t
        JOIN priorities p ON p.id = t.priority_id
        JOIN statuses s ON s.id = t.status_id
        WHERE %s AND s.is_final = FALSE
          AND t.created_at + make_interval(hours => p.resolution_sla_hours) < $%d`, where, len(breachArgs))
	if err := r.pool.QueryRow(ctx, breachQuery, breachArgs...).Scan(&stats.SLABreaches); err != nil {
		return nil, err
	}
	return stats, nil
}

func collectCounts(rows pgx.Rows, into map[string]int) error {
	defer rows.Close()
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		into[key] = count
	}
	return rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Number,
		&ticket.Title,
		&ticket.Description,
		&ticket.CategoryID,
		&ticket.PriorityID,
		&ticket.StatusID,
		&ticket.RequesterID,
		&ticket.AssigneeID,
		&ticket.TeamID,
		&ticket.DepartmentID,
		&ticket.DueBy,
		&ticket.ResolvedAt,
		&ticket.ClosedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.Version,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
