package service

import (
	"context"
	"errors"
	"strings"

	"bragawork/internal/events"
	"bragawork/internal/models"
	"bragawork/internal/repository/sqlstore"
	"bragawork/internal/util"
)

// PlaceholderMediaURL stands in for a project saved without media.
const PlaceholderMediaURL = "https://via.placeholder.com/600x400"

// ProjectInput is a create (ID zero) or an edit. Nil fields are left
// unchanged on edit and take their defaults on create.
type ProjectInput struct {
	ID           ID      `json:"id"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	MediaURL     *string `json:"mediaUrl"`
	MediaType    *string `json:"mediaType"`
	ProjectLink  *string `json:"projectLink"`
	Status       string  `json:"status"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
}

type ProjectService struct {
	projects  sqlstore.ProjectRepository
	publisher events.Publisher
}

func NewProjectService(projects sqlstore.ProjectRepository, publisher events.Publisher) *ProjectService {
	return &ProjectService{projects: projects, publisher: publisher}
}

// deriveVisibility reconciles the status and the legacy active flag. A
// missing status follows isActive, or is pendente when that is missing too;
// a missing isActive is true only for aprovado.
func deriveVisibility(status string, isActive *bool) (models.ProjectStatus, bool) {
	st := models.ProjectStatus(status)
	switch {
	case st == "" && isActive != nil:
		if *isActive {
			st = models.ProjectStatusApproved
		} else {
			st = models.ProjectStatusCancelled
		}
	case st == "":
		st = models.ProjectStatusPending
	}

	active := st == models.ProjectStatusApproved
	if isActive != nil {
		active = *isActive
	}
	return st, active
}

// Save inserts or updates a project and returns its id.
func (s *ProjectService) Save(ctx context.Context, in ProjectInput, actor Actor) (int64, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return 0, reject(ErrInvalidInput, "Título é obrigatório.")
	}

	status, active := deriveVisibility(strings.TrimSpace(in.Status), in.IsActive)
	if !status.Valid() {
		return 0, reject(ErrInvalidInput, "Status inválido.")
	}

	var mediaType *models.MediaType
	if in.MediaType != nil && *in.MediaType != "" {
		mt := models.MediaType(*in.MediaType)
		if !mt.Valid() {
			return 0, reject(ErrInvalidInput, "Tipo de mídia inválido.")
		}
		mediaType = &mt
	}
	mediaURL := in.MediaURL
	if mediaURL != nil && strings.TrimSpace(*mediaURL) == "" {
		mediaURL = nil
	}

	var (
		id  int64
		err error
	)
	if in.ID != 0 {
		id = in.ID.Int64()
		err = s.projects.Update(ctx, sqlstore.ProjectUpdate{
			ID:           id,
			Title:        in.Title,
			Description:  in.Description,
			MediaURL:     mediaURL,
			MediaType:    mediaType,
			ProjectLink:  in.ProjectLink,
			Status:       status,
			IsActive:     active,
			DisplayOrder: in.DisplayOrder,
		})
		if errors.Is(err, sqlstore.ErrNotFound) {
			return 0, reject(ErrNotFound, "Projeto não encontrado.")
		}
	} else {
		p := &models.Project{
			Title:       in.Title,
			Description: in.Description,
			MediaURL:    PlaceholderMediaURL,
			MediaType:   models.MediaTypeImage,
			ProjectLink: in.ProjectLink,
			Status:      status,
			IsActive:    active,
		}
		if mediaURL != nil {
			p.MediaURL = *mediaURL
		}
		if mediaType != nil {
			p.MediaType = *mediaType
		}
		if in.DisplayOrder != nil {
			p.DisplayOrder = *in.DisplayOrder
		}
		if actor.UserID != 0 {
			createdBy := actor.UserID
			p.CreatedBy = &createdBy
		}
		id, err = s.projects.Create(ctx, p)
	}
	if err != nil {
		return 0, err
	}

	util.Info("Project saved",
		util.Int64("project_id", id),
		util.String("status", string(status)),
		util.String("admin", actor.Username))
	events.Emit(ctx, s.publisher, events.New(events.ProjectSaved, id, actor.Username).With("status", string(status)))
	return id, nil
}

// List returns approved projects, or every project when includeAll is set.
func (s *ProjectService) List(ctx context.Context, includeAll bool) ([]models.Project, error) {
	return s.projects.List(ctx, !includeAll)
}

func (s *ProjectService) Delete(ctx context.Context, id ID, actor Actor) error {
	if id == 0 {
		return reject(ErrInvalidInput, "ID é obrigatório.")
	}

	err := s.projects.Delete(ctx, id.Int64())
	if errors.Is(err, sqlstore.ErrNotFound) {
		return reject(ErrNotFound, "Projeto não encontrado.")
	}
	if err != nil {
		return err
	}

	util.Info("Project deleted",
		util.Int64("project_id", id.Int64()),
		util.String("admin", actor.Username))
	events.Emit(ctx, s.publisher, events.New(events.ProjectDeleted, id.Int64(), actor.Username))
	return nil
}

// RecordView counts a carousel view. Only approved projects are counted.
func (s *ProjectService) RecordView(ctx context.Context, id ID) error {
	if id == 0 {
		return reject(ErrInvalidInput, "ID é obrigatório.")
	}
	err := s.projects.IncrementViews(ctx, id.Int64())
	if errors.Is(err, sqlstore.ErrNotFound) {
		return reject(ErrNotFound, "Projeto não encontrado.")
	}
	return err
}
