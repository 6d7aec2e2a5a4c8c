package models

import "time"

type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "pendente"
	ProjectStatusApproved  ProjectStatus = "aprovado"
	ProjectStatusCancelled ProjectStatus = "cancelado"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusApproved, ProjectStatusCancelled:
		return true
	}
	return false
}

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

func (m MediaType) Valid() bool {
	return m == MediaTypeImage || m == MediaTypeVideo
}

// Project is a portfolio entry shown in the public carousel.
//
// IsActive predates Status and is kept in sync with it: only approved
// projects are active.
type Project struct {
	ID           int64         `db:"id" json:"id"`
	Title        string        `db:"title" json:"title"`
	Description  *string       `db:"description" json:"description"`
	MediaURL     string        `db:"media_url" json:"mediaUrl"`
	MediaType    MediaType     `db:"media_type" json:"mediaType"`
	ProjectLink  *string       `db:"project_link" json:"projectLink"`
	Status       ProjectStatus `db:"status" json:"status"`
	IsActive     bool          `db:"is_active" json:"isActive"`
	DisplayOrder int           `db:"display_order" json:"displayOrder"`
	ViewsCount   int           `db:"views_count" json:"viewsCount"`
	CreatedBy    *int64        `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time     `db:"updated_at" json:"updatedAt"`
}

// UploadedImage is a file previously stored by the image upload endpoint.
type UploadedImage struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadDate time.Time `json:"uploadDate"`
}
