package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/catalog-service/internal/app/catalog/entity"
	"storefront/pkg/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrCategoryAlreadyExists = errors.New("category with this name already exists")

// pgxQuerier - общая часть pgxpool.Pool и pgx.Tx
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type categoryRepository struct {
	db pgxQuerier
}

// NewCategoryRepository создает репозиторий категорий поверх пула pgx
func NewCategoryRepository(db pgxQuerier) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create вставляет категорию, идентификатор генерирует PostgreSQL
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "categories")
	defer timer.ObserveDuration()

	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id::text, created_at
	`

	err := r.db.QueryRow(ctx, query, category.Name, category.Description).Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetAll возвращает категории, отсортированные по имени
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "categories")
	defer timer.ObserveDuration()

	query := `SELECT id::text, name, description, created_at FROM categories ORDER BY name ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	categories := make([]entity.Category, 0)
	for rows.Next() {
		var category entity.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}
