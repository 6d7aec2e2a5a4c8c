package sqlstore

import (
	"context"

	"bragawork/internal/models"
)

// AdminRepository is the credential store.
type AdminRepository interface {
	GetActiveByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *models.AdminUser) (int64, error)
	TouchLastLogin(ctx context.Context, id int64) error
}

type QuoteRepository interface {
	Create(ctx context.Context, quote *models.QuoteRequest) (int64, error)
	// List orders pending first, then in_progress, then the rest, each group
	// newest first.
	List(ctx context.Context) ([]models.QuoteRequest, error)
	// UpdateStatus leaves admin_notes untouched when notes is nil.
	UpdateStatus(ctx context.Context, id int64, status models.QuoteStatus, notes *string) error
	Delete(ctx context.Context, id int64) error
}

// ProjectUpdate carries an edit. Nil pointers keep the stored value.
type ProjectUpdate struct {
	ID           int64
	Title        string
	Description  *string
	MediaURL     *string
	MediaType    *models.MediaType
	ProjectLink  *string
	Status       models.ProjectStatus
	IsActive     bool
	DisplayOrder *int
}

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) (int64, error)
	Update(ctx context.Context, update ProjectUpdate) error
	Get(ctx context.Context, id int64) (*models.Project, error)
	// List orders by display_order ascending, then newest first.
	List(ctx context.Context, onlyApproved bool) ([]models.Project, error)
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
