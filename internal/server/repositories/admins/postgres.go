// Package admins stores back-office accounts.
package admins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soncatalog/internal/common"
	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByEmail looks the admin up by exact email; no case folding is applied.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query :=
		`SELECT id, email, password_hash, created_at FROM admins
		 WHERE email = $1
		 `

	admin := &models.Admin{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&admin.ID, &admin.Email, &admin.PasswordHash, &admin.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return admin, nil
}

// Upsert creates the admin or replaces the password hash of an existing one.
func (r *PostgresRepository) Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	query :=
		`INSERT INTO admins (email, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		 RETURNING id, email, created_at
		 `

	admin := &models.Admin{PasswordHash: passwordHash}
	err := r.db.QueryRowContext(ctx, query, email, passwordHash).Scan(&admin.ID, &admin.Email, &admin.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return admin, nil
}
