package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error)
	CountByTicket(ctx context.Context, ticketID string) (int, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository returns repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (id, ticket_id, uploaded_by_id, file_name, file_path, content_type, size_bytes, uploaded_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		attachment.ID,
		attachment.TicketID,
		attachment.UploadedByID,
		attachment.FileName,
		attachment.FilePath,
		attachment.ContentType,
		attachment.SizeBytes,
		attachment.UploadedAt,
	)
	return mapPgError(err)
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, uploaded_by_id, file_name, file_path, content_type, size_bytes, uploaded_at
        FROM attachments WHERE ticket_id=$1 ORDER BY uploaded_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Attachment{}
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.TicketID,
			&att.UploadedByID,
			&att.FileName,
			&att.FilePath,
			&att.ContentType,
			&att.SizeBytes,
			&att.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}

func (r *attachmentRepository) CountByTicket(ctx context.Context, ticketID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attachments WHERE ticket_id=$1`, ticketID).Scan(&count)
	return count, err
}
