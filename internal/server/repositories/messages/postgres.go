// Package messages provides PostgreSQL-backed storage of contact form submissions.
package messages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/soncatalog/internal/dbx"
	"github.com/dmitrijs2005/soncatalog/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.ContactMessage) (*models.ContactMessage, error) {
	query :=
		`INSERT INTO contact_messages (name, company, email, phone, message)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, handled, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, m.Name, m.Company, m.Email, m.Phone, m.Message).
		Scan(&m.ID, &m.Handled, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

// List returns all messages newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]models.ContactMessage, error) {
	query :=
		`SELECT id, name, company, email, phone, message, handled, created_at
		 FROM contact_messages
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.ContactMessage{}
	for rows.Next() {
		var m models.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Company, &m.Email, &m.Phone, &m.Message, &m.Handled, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// MarkHandled flags the given messages as handled and returns how many rows changed.
func (r *PostgresRepository) MarkHandled(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inList(ids)
	return r.exec(ctx, `UPDATE contact_messages SET handled = true WHERE id IN (`+in+`)`, args...)
}

// Delete removes the given messages and returns how many rows were deleted.
func (r *PostgresRepository) Delete(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inList(ids)
	return r.exec(ctx, `DELETE FROM contact_messages WHERE id IN (`+in+`)`, args...)
}

func (r *PostgresRepository) CountUnhandled(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM contact_messages WHERE NOT handled`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// inList builds "$1, $2, ..." for ids.
func inList(ids []string) (string, []any) {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	return strings.Join(ph, ", "), args
}
