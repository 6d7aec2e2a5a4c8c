package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bragawork/internal/models"
)

const projectColumns = `id, title, description, media_url, media_type, project_link, status, is_active,
	display_order, views_count, created_by, created_at, updated_at`

type projectRepository struct {
	db Engine
}

func NewProjectRepository(db Engine) ProjectRepository {
	return &projectRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (models.Project, error) {
	var (
		p      models.Project
		status sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.MediaURL, &p.MediaType, &p.ProjectLink, &status, &p.IsActive,
		&p.DisplayOrder, &p.ViewsCount, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}
	p.Status = models.ProjectStatusPending
	if status.Valid && status.String != "" {
		p.Status = models.ProjectStatus(status.String)
	}
	return p, nil
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO projects (title, description, media_url, media_type, project_link, status, is_active, display_order, created_by)
		VALUES (%s)`, placeholders(r.db, 1, 9))

	id, err := r.db.InsertAndGetID(ctx, query,
		p.Title, nullString(p.Description), p.MediaURL, string(p.MediaType), nullString(p.ProjectLink),
		string(p.Status), p.IsActive, p.DisplayOrder, nullInt64(p.CreatedBy),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create project: %w", err)
	}
	p.ID = id
	return id, nil
}

func (r *projectRepository) Update(ctx context.Context, u ProjectUpdate) error {
	p := r.db.Placeholder
	query := fmt.Sprintf(`
		UPDATE projects
		SET title = %s,
			description = COALESCE(%s, description),
			media_url = COALESCE(%s, media_url),
			media_type = COALESCE(%s, media_type),
			project_link = COALESCE(%s, project_link),
			status = %s,
			is_active = %s,
			display_order = COALESCE(%s, display_order),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = %s`, p(1), p(2), p(3), p(4), p(5), p(6), p(7), p(8), p(9))

	var mediaType any
	if u.MediaType != nil {
		mediaType = string(*u.MediaType)
	}
	var order any
	if u.DisplayOrder != nil {
		order = int64(*u.DisplayOrder)
	}

	res, err := r.db.Exec(ctx, query,
		u.Title, nullString(u.Description), nullString(u.MediaURL), mediaType, nullString(u.ProjectLink),
		string(u.Status), u.IsActive, order, u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", u.ID, err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id int64) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = %s`, projectColumns, r.db.Placeholder(1))

	p, err := scanProject(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return &p, nil
}

func (r *projectRepository) List(ctx context.Context, onlyApproved bool) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if onlyApproved {
		query += ` WHERE status = ` + r.db.Placeholder(1)
		args = append(args, string(models.ProjectStatusApproved))
	}
	query += ` ORDER BY display_order ASC, created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM projects WHERE id = %s`, r.db.Placeholder(1))

	res, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews only counts views of approved projects.
func (r *projectRepository) IncrementViews(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`
		UPDATE projects SET views_count = views_count + 1
		WHERE id = %s AND status = %s`, r.db.Placeholder(1), r.db.Placeholder(2))

	res, err := r.db.Exec(ctx, query, id, string(models.ProjectStatusApproved))
	if err != nil {
		return fmt.Errorf("failed to count project view %d: %w", id, err)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *projectRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt64(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}
