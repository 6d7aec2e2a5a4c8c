package sqlstore

import (
	"context"
	"fmt"

	"bragawork/internal/models"
)

const quoteColumns = `id, first_name, last_name, email, country_code, phone, project_description,
	status, admin_notes, assigned_to, created_at, updated_at`

type quoteRepository struct {
	db Engine
}

func NewQuoteRepository(db Engine) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, q *models.QuoteRequest) (int64, error) {
	if q.Status == "" {
		q.Status = models.QuoteStatusPending
	}

	query := fmt.Sprintf(`
		INSERT INTO quote_requests (first_name, last_name, email, country_code, phone, project_description, status)
		VALUES (%s)`, placeholders(r.db, 1, 7))

	id, err := r.db.InsertAndGetID(ctx, query,
		q.FirstName, q.LastName, q.Email, q.CountryCode, q.Phone, q.ProjectDescription, string(q.Status))
	if err != nil {
		return 0, fmt.Errorf("failed to create quote request: %w", err)
	}
	q.ID = id
	return id, nil
}

func (r *quoteRepository) List(ctx context.Context) ([]models.QuoteRequest, error) {
	query := `SELECT ` + quoteColumns + `
		FROM quote_requests
		ORDER BY
			CASE WHEN status = 'pending' THEN 1
			     WHEN status = 'in_progress' THEN 2
			     ELSE 3 END,
			created_at DESC,
			id DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote requests: %w", err)
	}
	defer rows.Close()

	quotes := make([]models.QuoteRequest, 0)
	for rows.Next() {
		var q models.QuoteRequest
		if err := rows.Scan(
			&q.ID, &q.FirstName, &q.LastName, &q.Email, &q.CountryCode, &q.Phone, &q.ProjectDescription,
			&q.Status, &q.AdminNotes, &q.AssignedTo, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote request: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote requests: %w", err)
	}
	return quotes, nil
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id int64, status models.QuoteStatus, notes *string) error {
	var (
		query string
		args  []any
	)
	if notes != nil {
		query = fmt.Sprintf(`
			UPDATE quote_requests SET status = %s, admin_notes = %s, updated_at = CURRENT_TIMESTAMP
			WHERE id = %s`, r.db.Placeholder(1), r.db.Placeholder(2), r.db.Placeholder(3))
		args = []any{string(status), *notes, id}
	} else {
		query = fmt.Sprintf(`
			UPDATE quote_requests SET status = %s, updated_at = CURRENT_TIMESTAMP
			WHERE id = %s`, r.db.Placeholder(1), r.db.Placeholder(2))
		args = []any{string(status), id}
	}

	res, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update quote request %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *quoteRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM quote_requests WHERE id = %s`, r.db.Placeholder(1))

	res, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete quote request %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
