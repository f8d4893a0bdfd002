package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solobooks/solobooks/internal/entity"
)

type AttachmentRepository interface {
	// CreateAttachment records a stored blob against an entity. Called after
	// the blob write succeeds; failure here is logged by the committer and
	// never rolls back the expense.
	CreateAttachment(ctx context.Context, a *entity.Attachment) (*entity.Attachment, error)
}

type attachmentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAttachmentRepository(pool *pgxpool.Pool, logger *slog.Logger) AttachmentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &attachmentRepository{pool: pool, logger: logger}
}

func (r *attachmentRepository) CreateAttachment(ctx context.Context, a *entity.Attachment) (*entity.Attachment, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	sql, args, err := squirrel.Insert("attachments").
		Columns("id", "user_id", "entity_type", "entity_id", "file_name",
			"mime_type", "size", "storage_key", "created_at").
		Values(a.ID, a.UserID, a.EntityType, a.EntityID, a.FileName,
			a.MimeType, a.Size, a.StorageKey, a.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		r.logger.Error("attachment.create.failed", "entity_id", a.EntityID, "file", a.FileName, "error", err)
		return nil, err
	}
	return a, nil
}
