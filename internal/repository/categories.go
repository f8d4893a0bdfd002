package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solobooks/solobooks/internal/entity"
)

type CategoryRepository interface {
	// ListCategories returns the user's categories, optionally filtered by
	// type ("expense" | "revenue"). Reference data: read-only here.
	ListCategories(ctx context.Context, userID uuid.UUID, categoryType string) ([]entity.Category, error)
	// Exists reports whether the category id belongs to the user.
	Exists(ctx context.Context, userID, categoryID uuid.UUID) (bool, error)
}

type categoryRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCategoryRepository(pool *pgxpool.Pool, logger *slog.Logger) CategoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryRepository{pool: pool, logger: logger}
}

func (r *categoryRepository) ListCategories(ctx context.Context, userID uuid.UUID, categoryType string) ([]entity.Category, error) {
	q := squirrel.Select("id", "name", "category_type").
		From("categories").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("name").
		PlaceholderFormat(squirrel.Dollar)
	if categoryType != "" {
		q = q.Where(squirrel.Eq{"category_type": categoryType})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		r.logger.Error("categories.list.failed", "user_id", userID, "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CategoryType); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *categoryRepository) Exists(ctx context.Context, userID, categoryID uuid.UUID) (bool, error) {
	sql, args, err := squirrel.Select("1").
		From("categories").
		Where(squirrel.Eq{"user_id": userID, "id": categoryID}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, err
	}
	var one int
	err = r.pool.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
