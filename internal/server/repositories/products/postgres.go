// Package products provides PostgreSQL-backed storage of catalog products.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
)

// PostgresRepository implements product storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectWithCategory = `
	SELECT p.id, p.title, p.slug, p.category_id, p.description, p.image_url, p.volume, p.pack_size,
	       p.featured, p.created_at, p.updated_at,
	       c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

func scanWithCategory(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{Category: &models.Category{}}
	c := p.Category
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.CategoryID, &p.Description, &p.ImageURL, &p.Volume, &p.PackSize,
		&p.Featured, &p.CreatedAt, &p.UpdatedAt,
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt,
	)
	return p, err
}

// List returns products newest first, each with its category.
func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]models.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		where = append(where, "c.slug = $"+strconv.Itoa(len(args)))
	}
	if f.FeaturedOnly {
		where = append(where, "p.featured")
	}

	query := selectWithCategory
	if len(where) > 0 {
		query += "\n\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\tORDER BY p.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Product{}
	for rows.Next() {
		p, err := scanWithCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, err := scanWithCategory(r.db.QueryRowContext(ctx, selectWithCategory+"\n\tWHERE p.id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`INSERT INTO products (title, slug, category_id, description, image_url, volume, pack_size, featured)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Slug, p.CategoryID, p.Description, p.ImageURL, p.Volume, p.PackSize, p.Featured,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

// Update replaces every editable field. Returns common.ErrorNotFound when no
// product has the given ID.
func (r *PostgresRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`UPDATE products SET title = $2, slug = $3, category_id = $4, description = $5,
		        image_url = $6, volume = $7, pack_size = $8, featured = $9, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.Title, p.Slug, p.CategoryID, p.Description, p.ImageURL, p.Volume, p.PackSize, p.Featured,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM products WHERE category_id = $1`, categoryID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Count(ctx context.Context, featuredOnly bool) (int64, error) {
	query := `SELECT count(*) FROM products`
	if featuredOnly {
		query += ` WHERE featured`
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
