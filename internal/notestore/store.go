// Package notestore persists note records. It owns the notes table; the link
// graph and search index are derived state maintained by their own packages.
package notestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mjelva/laguz/internal/apperr"
	"github.com/mjelva/laguz/internal/checksum"
	"github.com/mjelva/laguz/internal/models"
)

// Valid sort fields for List.
const (
	SortUpdatedAt = "updated_at"
	SortTitle     = "title"
	SortCreatedAt = "created_at"
)

// Store provides CRUD access to the notes table.
type Store struct {
	db *sql.DB
}

// New creates a Store on top of an open database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Checksum computes the content checksum for a title + block sequence. The
// same serialization is used on write, so a round-tripped note compares equal.
func Checksum(title string, content []models.Block) string {
	blob, _ := json.Marshal(struct {
		Title   string         `json:"title"`
		Content []models.Block `json:"content"`
	}{title, content})
	return checksum.Sum(blob)
}

// Create inserts a new note with a generated id and returns it.
func (s *Store) Create(ctx context.Context, ownerID, title string, content []models.Block) (*models.Note, error) {
	if content == nil {
		content = []models.Block{}
	}
	blob, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("notestore: marshal content: %w", err)
	}
	now := time.Now().UTC()
	n := &models.Note{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		Checksum:  Checksum(title, content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notes (id, owner_id, title, content, checksum, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.OwnerID, n.Title, string(blob), n.Checksum, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("notestore: insert: %w", err)
	}
	return n, nil
}

// Get returns a note by id, or apperr.ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*models.Note, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, content, checksum, created_at, updated_at
		FROM notes WHERE id = ?
	`, id)
	return scanNote(row)
}

// Update replaces a note's title and content and bumps updated_at.
// Returns apperr.ErrNotFound if the note does not exist.
func (s *Store) Update(ctx context.Context, id, title string, content []models.Block) (*models.Note, error) {
	if content == nil {
		content = []models.Block{}
	}
	blob, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("notestore: marshal content: %w", err)
	}
	now := time.Now().UTC()
	cs := Checksum(title, content)
	res, err := s.db.ExecContext(ctx, `
		UPDATE notes SET title = ?, content = ?, checksum = ?, updated_at = ?
		WHERE id = ?
	`, title, string(blob), cs, now, id)
	if err != nil {
		return nil, fmt.Errorf("notestore: update: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a note row. Returns apperr.ErrNotFound if absent.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("notestore: delete: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// GetTitle returns just the title of a note, or apperr.ErrNotFound.
func (s *Store) GetTitle(ctx context.Context, id string) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx, `SELECT title FROM notes WHERE id = ?`, id).Scan(&title)
	if err == sql.ErrNoRows {
		return "", apperr.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("notestore: get title: %w", err)
	}
	return title, nil
}

// List returns paginated note metadata for an owner, newest first by default,
// plus the total count before pagination.
func (s *Store) List(ctx context.Context, ownerID string, limit, offset int, sort string) ([]models.NoteMetadata, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	orderBy := "updated_at DESC"
	switch sort {
	case SortTitle:
		orderBy = "title ASC"
	case SortCreatedAt:
		orderBy = "created_at DESC"
	case "", SortUpdatedAt:
	default:
		return nil, 0, fmt.Errorf("notestore: invalid sort field %q", sort)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM notes WHERE owner_id = ?`, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("notestore: count: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, checksum, updated_at
		FROM notes WHERE owner_id = ?
		ORDER BY `+orderBy+`
		LIMIT ? OFFSET ?
	`, ownerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("notestore: list: %w", err)
	}
	defer rows.Close()

	var out []models.NoteMetadata
	for rows.Next() {
		var m models.NoteMetadata
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Title, &m.Checksum, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// All streams every note, used for rebuilding derived state at startup.
func (s *Store) All(ctx context.Context) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, content, checksum, created_at, updated_at
		FROM notes
	`)
	if err != nil {
		return nil, fmt.Errorf("notestore: all: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNoteRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row *sql.Row) (*models.Note, error) {
	n, err := scanNoteRows(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	return n, err
}

func scanNoteRows(sc rowScanner) (*models.Note, error) {
	var n models.Note
	var blob string
	if err := sc.Scan(&n.ID, &n.OwnerID, &n.Title, &blob, &n.Checksum, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(blob), &n.Content); err != nil {
		return nil, fmt.Errorf("notestore: decode content of %s: %w", n.ID, err)
	}
	return &n, nil
}
