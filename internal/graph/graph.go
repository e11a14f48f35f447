// Package graph maintains the persisted link edges between notes.
//
// Edges live in their own relation keyed by a generated id with a uniqueness
// constraint on (source, target), so the graph survives restarts and backlink
// queries are answered by an index on the target column.
package graph

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mjelva/laguz/internal/models"
)

// Manager owns the links table.
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Manager on top of an open database.
func New(db *sql.DB, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{db: db, logger: logger}
}

// Reconcile diffs the extracted references for sourceID against the persisted
// edge set: new targets are inserted, stale targets removed, unchanged pairs
// left untouched. Idempotent: a second call with the same refs is a no-op.
//
// References to nonexistent notes are dropped silently: link integrity with
// the note store is a soft constraint enforced at write time, not a
// transactional guarantee.
func (m *Manager) Reconcile(ctx context.Context, sourceID string, refs []models.LinkRef) error {
	persisted, err := m.targetsOf(ctx, sourceID)
	if err != nil {
		return err
	}

	wanted := make(map[string]models.LinkRef, len(refs))
	for _, r := range refs {
		if r.TargetID == "" || r.TargetID == sourceID {
			continue
		}
		if _, dup := wanted[r.TargetID]; dup {
			continue
		}
		wanted[r.TargetID] = r
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for target, linkID := range persisted {
		if _, keep := wanted[target]; keep {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM links WHERE id = ?`, linkID); err != nil {
			return fmt.Errorf("graph: delete stale link: %w", err)
		}
	}

	now := time.Now().UTC()
	for target, ref := range wanted {
		if _, exists := persisted[target]; exists {
			continue
		}
		// The EXISTS guard makes a dangling target insert zero rows, so one
		// bad reference cannot abort the transaction.
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO links (id, source_id, target_id, link_text, created_at)
			SELECT ?, ?, ?, ?, ?
			WHERE EXISTS (SELECT 1 FROM notes WHERE id = ?)
		`, uuid.NewString(), sourceID, target, ref.LinkText, now, target)
		if err != nil {
			return fmt.Errorf("graph: insert link: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			m.logger.Debug("graph: dropped dangling reference",
				slog.String("source", sourceID), slog.String("target", target))
		}
	}

	return tx.Commit()
}

// Backlinks returns every note linking to noteID, decorated with the
// referring note's title, newest link first.
func (m *Manager) Backlinks(ctx context.Context, noteID string) ([]models.LinkedNote, error) {
	return m.linkedNotes(ctx, `
		SELECT l.source_id, n.title, l.link_text, l.created_at
		FROM links l JOIN notes n ON n.id = l.source_id
		WHERE l.target_id = ?
		ORDER BY l.created_at DESC, l.source_id ASC
	`, noteID)
}

// Outgoing returns every note that noteID links to, decorated with the target
// note's title, newest link first.
func (m *Manager) Outgoing(ctx context.Context, noteID string) ([]models.LinkedNote, error) {
	return m.linkedNotes(ctx, `
		SELECT l.target_id, n.title, l.link_text, l.created_at
		FROM links l JOIN notes n ON n.id = l.target_id
		WHERE l.source_id = ?
		ORDER BY l.created_at DESC, l.target_id ASC
	`, noteID)
}

// OnNoteDeleted removes every edge touching noteID in either direction.
// Called synchronously before the note row itself is deleted so dangling
// edges are never observable.
func (m *Manager) OnNoteDeleted(ctx context.Context, noteID string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM links WHERE source_id = ? OR target_id = ?`, noteID, noteID)
	if err != nil {
		return fmt.Errorf("graph: cascade delete: %w", err)
	}
	return nil
}

// Links returns every persisted edge for an owner's notes, for graph dumps.
func (m *Manager) Links(ctx context.Context, ownerID string) ([]models.Link, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT l.id, l.source_id, l.target_id, l.link_text, l.created_at
		FROM links l JOIN notes n ON n.id = l.source_id
		WHERE n.owner_id = ?
		ORDER BY l.created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("graph: links: %w", err)
	}
	defer rows.Close()

	var out []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.LinkText, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// targetsOf returns target id → link id for all persisted edges of source.
func (m *Manager) targetsOf(ctx context.Context, sourceID string) (map[string]string, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, target_id FROM links WHERE source_id = ?`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("graph: targets of %s: %w", sourceID, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var id, target string
		if err := rows.Scan(&id, &target); err != nil {
			return nil, err
		}
		out[target] = id
	}
	return out, rows.Err()
}

func (m *Manager) linkedNotes(ctx context.Context, query, noteID string) ([]models.LinkedNote, error) {
	rows, err := m.db.QueryContext(ctx, query, noteID)
	if err != nil {
		return nil, fmt.Errorf("graph: linked notes: %w", err)
	}
	defer rows.Close()

	var out []models.LinkedNote
	for rows.Next() {
		var ln models.LinkedNote
		if err := rows.Scan(&ln.NoteID, &ln.Title, &ln.LinkText, &ln.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ln)
	}
	return out, rows.Err()
}
