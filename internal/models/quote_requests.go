package models

import "time"

type QuoteStatus string

const (
	QuoteStatusPending    QuoteStatus = "pending"
	QuoteStatusInProgress QuoteStatus = "in_progress"
	QuoteStatusCompleted  QuoteStatus = "completed"
	QuoteStatusRejected   QuoteStatus = "rejected"
)

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusInProgress, QuoteStatusCompleted, QuoteStatusRejected:
		return true
	}
	return false
}

// QuoteRequest is an inquiry sent through the public quote form.
type QuoteRequest struct {
	ID                 int64       `db:"id" json:"id"`
	FirstName          string      `db:"first_name" json:"firstName"`
	LastName           string      `db:"last_name" json:"lastName"`
	Email              string      `db:"email" json:"email"`
	CountryCode        string      `db:"country_code" json:"countryCode"`
	Phone              string      `db:"phone" json:"phone"`
	ProjectDescription string      `db:"project_description" json:"projectDescription"`
	Status             QuoteStatus `db:"status" json:"status"`
	AdminNotes         *string     `db:"admin_notes" json:"adminNotes"`
	AssignedTo         *int64      `db:"assigned_to" json:"assignedTo,omitempty"`
	CreatedAt          time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time   `db:"updated_at" json:"updatedAt"`
}
