// Package models defines the domain types for Laguz.
package models

import "time"

// Note represents a block-structured note owned by a single user.
type Note struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Content   []Block   `json:"content"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Link represents a directed edge between two notes, persisted as its own row
// so the graph survives restarts and cascades on note deletion.
type Link struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	LinkText  string    `json:"link_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkRef is an extracted reference before it is persisted as a Link.
type LinkRef struct {
	TargetID string
	LinkText string
}

// LinkedNote is a link decorated with the title of the note on the far end,
// used for backlink and outgoing-link listings.
type LinkedNote struct {
	NoteID    string    `json:"note_id"`
	Title     string    `json:"title"`
	LinkText  string    `json:"link_text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Match types for search results.
const (
	MatchTitle   = "title"
	MatchContent = "content"
)

// SearchResult represents one ranked search hit.
type SearchResult struct {
	NoteID    string    `json:"note_id"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	MatchType string    `json:"match_type"`
	Score     float64   `json:"score"`
	UpdatedAt time.Time `json:"updated_at"`
}
