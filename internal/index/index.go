// Package index maintains per-note searchable representations: a trigram set
// of the title for fuzzy matching and the flattened plain text of all blocks.
//
// Entries are replaced wholesale on every note mutation rather than patched
// incrementally. Note bodies are bounded in size and index maintenance is off
// the request-serving hot path, so full re-derivation stays cheap.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mjelva/laguz/internal/apperr"
	"github.com/mjelva/laguz/internal/models"
)

// Entry is the searchable representation of one note.
type Entry struct {
	NoteID        string
	OwnerID       string
	Title         string
	TitleTrigrams map[string]struct{}
	ContentText   string
	UpdatedAt     time.Time
}

// Indexer owns the search_index table.
type Indexer struct {
	db *sql.DB
}

// New creates an Indexer on top of an open database.
func New(db *sql.DB) *Indexer {
	return &Indexer{db: db}
}

// FlattenContent concatenates the textual payload of every block in order,
// joined with single spaces. Non-text data (image URLs, unknown block types)
// is discarded; reference labels and image alt text count as text.
func FlattenContent(content []models.Block) string {
	var parts []string
	for _, b := range content {
		var text string
		switch {
		case b.IsTextBearing():
			if d, ok := b.DecodeText(); ok {
				text = d.Text
			}
		case b.Type == models.BlockReference:
			if d, ok := b.DecodeReference(); ok {
				text = d.Label
			}
		case b.Type == models.BlockImage:
			if d, ok := b.DecodeImage(); ok {
				text = d.Alt
			}
		}
		text = strings.TrimSpace(text)
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// IndexNote derives and stores the entry for a note, replacing any previous
// entry for the same note id.
func (ix *Indexer) IndexNote(ctx context.Context, n *models.Note) error {
	trigrams := encodeTrigrams(Trigrams(n.Title))
	contentText := FlattenContent(n.Content)
	_, err := ix.db.ExecContext(ctx, `
		INSERT INTO search_index (note_id, owner_id, title, title_trigrams, content_text, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(note_id) DO UPDATE SET
			owner_id       = excluded.owner_id,
			title          = excluded.title,
			title_trigrams = excluded.title_trigrams,
			content_text   = excluded.content_text,
			updated_at     = excluded.updated_at
	`, n.ID, n.OwnerID, n.Title, trigrams, contentText, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert entry: %w", err)
	}
	return nil
}

// RemoveNote deletes the entry for a note. Removing an absent entry is not
// an error.
func (ix *Indexer) RemoveNote(ctx context.Context, noteID string) error {
	if _, err := ix.db.ExecContext(ctx, `DELETE FROM search_index WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("index: remove entry: %w", err)
	}
	return nil
}

// GetEntry returns the current entry for a note, or apperr.ErrNotFound.
func (ix *Indexer) GetEntry(ctx context.Context, noteID string) (*Entry, error) {
	row := ix.db.QueryRowContext(ctx, `
		SELECT note_id, owner_id, title, title_trigrams, content_text, updated_at
		FROM search_index WHERE note_id = ?
	`, noteID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	return e, err
}

// EntriesForOwner returns every entry for an owner's notes. The join against
// the notes table skips stale entries whose note no longer exists, so a
// corrupt entry degrades to a missing search hit instead of a failed query.
func (ix *Indexer) EntriesForOwner(ctx context.Context, ownerID string) ([]Entry, error) {
	rows, err := ix.db.QueryContext(ctx, `
		SELECT s.note_id, s.owner_id, s.title, s.title_trigrams, s.content_text, s.updated_at
		FROM search_index s JOIN notes n ON n.id = s.note_id
		WHERE s.owner_id = ?
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("index: entries for owner: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc rowScanner) (*Entry, error) {
	var e Entry
	var trigrams string
	if err := sc.Scan(&e.NoteID, &e.OwnerID, &e.Title, &trigrams, &e.ContentText, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.TitleTrigrams = decodeTrigrams(trigrams)
	return &e, nil
}
