package postgres

import (
	"context"
	"fmt"

	"steampool/internal/domain"

	"github.com/jmoiron/sqlx"
)

// RequestRepo implements repository.RequestRepository
type RequestRepo struct {
	db *sqlx.DB
}

// NewRequestRepo creates a new request repository
func NewRequestRepo(db *sqlx.DB) *RequestRepo {
	return &RequestRepo{db: db}
}

// ReadRequests returns all requests, oldest first
func (r *RequestRepo) ReadRequests(ctx context.Context) ([]domain.Request, error) {
	requests := []domain.Request{}
	query := `SELECT id, user_name, user_id, body, created_at FROM requests ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("select requests: %w", err)
	}
	return requests, nil
}

// WriteRequests replaces the whole collection in one transaction
func (r *RequestRepo) WriteRequests(ctx context.Context, requests []domain.Request) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM requests`); err != nil {
		return fmt.Errorf("clear requests: %w", err)
	}

	query := `
		INSERT INTO requests (id, user_name, user_id, body, created_at)
		VALUES (:id, :user_name, :user_id, :body, :created_at)
	`
	for _, req := range requests {
		if _, err := tx.NamedExecContext(ctx, query, req); err != nil {
			return fmt.Errorf("insert request %s: %w", req.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
