package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mjelva/laguz/internal/models"
	"github.com/mjelva/laguz/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	OwnerID string         `json:"owner_id"`
	Title   string         `json:"title"`
	Content []models.Block `json:"content"`
}

// Validate validates the create request.
func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OwnerID, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 512)),
	)
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Title   string         `json:"title"`
	Content []models.Block `json:"content"`
}

// Validate validates the update request.
func (r UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 512)),
	)
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []models.NoteMetadata `json:"notes"`
	Total int                   `json:"total"`
}

// SearchResponse wraps ranked search results.
type SearchResponse struct {
	Query      string                `json:"query"`
	Results    []models.SearchResult `json:"results"`
	TotalCount int                   `json:"total_count"`
}

// LinksResponse wraps backlink and outgoing-link listings.
type LinksResponse struct {
	Links []models.LinkedNote `json:"links"`
}

// GraphResponse wraps the note graph for visualization.
type GraphResponse struct {
	Nodes []models.NoteMetadata `json:"nodes"`
	Links []models.Link         `json:"links"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}
