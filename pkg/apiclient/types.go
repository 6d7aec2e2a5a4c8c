package apiclient

import "time"

// Envelope is the {success, message} pair every endpoint answers with.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (e *Envelope) fail(msg string) {
	e.Success = false
	e.Message = msg
}

type failer interface {
	fail(msg string)
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	Envelope
	Token string `json:"token,omitempty"`
	User  *User  `json:"user,omitempty"`
}

type QuoteRequest struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	CountryCode        string `json:"countryCode,omitempty"`
	Phone              string `json:"phone"`
	ProjectDescription string `json:"projectDescription"`
}

type SubmitQuoteResponse struct {
	Envelope
	QuoteID int64 `json:"quoteId,omitempty"`
}

type Quote struct {
	ID                 int64     `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	Email              string    `json:"email"`
	CountryCode        string    `json:"countryCode"`
	Phone              string    `json:"phone"`
	ProjectDescription string    `json:"projectDescription"`
	Status             string    `json:"status"`
	AdminNotes         *string   `json:"adminNotes"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type QuotesResponse struct {
	Envelope
	Quotes []Quote
}

type Project struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	MediaURL     string    `json:"mediaUrl"`
	MediaType    string    `json:"mediaType"`
	ProjectLink  *string   `json:"projectLink"`
	Status       string    `json:"status"`
	IsActive     bool      `json:"isActive"`
	DisplayOrder int       `json:"displayOrder"`
	ViewsCount   int       `json:"viewsCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProjectsResponse struct {
	Envelope
	Projects []Project
}

// ProjectInput creates a project when ID is zero and updates it otherwise.
// Nil fields keep their stored value on update.
type ProjectInput struct {
	ID           int64   `json:"id,omitempty"`
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	MediaURL     *string `json:"mediaUrl,omitempty"`
	MediaType    *string `json:"mediaType,omitempty"`
	ProjectLink  *string `json:"projectLink,omitempty"`
	Status       string  `json:"status,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
	DisplayOrder *int    `json:"displayOrder,omitempty"`
}

type SaveProjectResponse struct {
	Envelope
	ID int64 `json:"id,omitempty"`
}

type Image struct {
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	UploadDate time.Time `json:"uploadDate"`
}

type UploadResponse struct {
	Envelope
	ImageURL string `json:"imageUrl,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type ImagesResponse struct {
	Envelope
	Images []Image `json:"images"`
}
