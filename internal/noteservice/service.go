// Package noteservice coordinates note mutations with the derived state that
// hangs off them: extracted links and the search index.
package noteservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/mjelva/laguz/internal/apperr"
	"github.com/mjelva/laguz/internal/extract"
	"github.com/mjelva/laguz/internal/graph"
	"github.com/mjelva/laguz/internal/index"
	"github.com/mjelva/laguz/internal/models"
	"github.com/mjelva/laguz/internal/notestore"
	"github.com/mjelva/laguz/internal/search"
)

// NoteDetail is the full representation of a note with its backlinks.
type NoteDetail struct {
	ID        string              `json:"id"`
	OwnerID   string              `json:"owner_id"`
	Title     string              `json:"title"`
	Content   []models.Block      `json:"content"`
	Checksum  string              `json:"checksum"`
	Backlinks []models.LinkedNote `json:"backlinks"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Service coordinates the note store, link graph, search index, and query
// engine.
type Service struct {
	notes  *notestore.Store
	graph  *graph.Manager
	index  *index.Indexer
	engine *search.Engine
	logger *slog.Logger
}

// New creates a note service.
func New(notes *notestore.Store, g *graph.Manager, ix *index.Indexer, engine *search.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{notes: notes, graph: g, index: ix, engine: engine, logger: logger}
}

// GetNote returns a note enriched with its backlinks.
func (s *Service) GetNote(ctx context.Context, id string) (*NoteDetail, error) {
	n, err := s.notes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, n)
}

// CreateNote stores a new note and derives its links and index entry.
func (s *Service) CreateNote(ctx context.Context, ownerID, title string, content []models.Block) (*NoteDetail, error) {
	n, err := s.notes.Create(ctx, ownerID, title, content)
	if err != nil {
		return nil, err
	}
	s.refreshDerived(ctx, n)
	return s.buildDetail(ctx, n)
}

// UpdateNote replaces a note's title and content, guarded by optimistic
// concurrency when ifMatch is non-empty, then re-derives links and index.
func (s *Service) UpdateNote(ctx context.Context, id, title string, content []models.Block, ifMatch string) (*NoteDetail, error) {
	existing, err := s.notes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != existing.Checksum {
		return nil, apperr.ErrConflict
	}
	n, err := s.notes.Update(ctx, id, title, content)
	if err != nil {
		return nil, err
	}
	s.refreshDerived(ctx, n)
	return s.buildDetail(ctx, n)
}

// DeleteNote removes a note. Edges touching the note and its index entry are
// removed first, so no dangling derived state is ever observable.
func (s *Service) DeleteNote(ctx context.Context, id string) error {
	if _, err := s.notes.Get(ctx, id); err != nil {
		return err
	}
	if err := s.graph.OnNoteDeleted(ctx, id); err != nil {
		return err
	}
	if err := s.index.RemoveNote(ctx, id); err != nil {
		return err
	}
	return s.notes.Delete(ctx, id)
}

// ListNotes returns paginated note metadata for an owner.
func (s *Service) ListNotes(ctx context.Context, ownerID string, limit, offset int, sort string) ([]models.NoteMetadata, int, error) {
	return s.notes.List(ctx, ownerID, limit, offset, sort)
}

// Search runs a ranked query over the owner's notes.
func (s *Service) Search(ctx context.Context, query, ownerID string, limit int) ([]models.SearchResult, int, error) {
	return s.engine.Search(ctx, query, ownerID, limit)
}

// Backlinks lists notes linking to id.
func (s *Service) Backlinks(ctx context.Context, id string) ([]models.LinkedNote, error) {
	return s.graph.Backlinks(ctx, id)
}

// OutgoingLinks lists notes that id links to.
func (s *Service) OutgoingLinks(ctx context.Context, id string) ([]models.LinkedNote, error) {
	return s.graph.Outgoing(ctx, id)
}

// Graph returns all of an owner's notes and edges for visualization.
func (s *Service) Graph(ctx context.Context, ownerID string) ([]models.NoteMetadata, []models.Link, error) {
	nodes, _, err := s.notes.List(ctx, ownerID, 200, 0, notestore.SortUpdatedAt)
	if err != nil {
		return nil, nil, err
	}
	links, err := s.graph.Links(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	return nodes, links, nil
}

// RebuildDerived re-runs link reconciliation and indexing over every note.
// Derived state is best-effort; this brings it back in line with the notes
// table after a crash or a schema migration.
func (s *Service) RebuildDerived(ctx context.Context) error {
	notes, err := s.notes.All(ctx)
	if err != nil {
		return err
	}
	for i := range notes {
		s.refreshDerived(ctx, &notes[i])
	}
	return nil
}

// refreshDerived reconciles links and rebuilds the index entry for a note.
// Failures are logged, never propagated: the note mutation is the source of
// truth and derived state can be rebuilt at any time.
func (s *Service) refreshDerived(ctx context.Context, n *models.Note) {
	refs := extract.Refs(n.ID, n.Content)
	if err := s.graph.Reconcile(ctx, n.ID, refs); err != nil {
		s.logger.Warn("link reconciliation failed",
			slog.String("note_id", n.ID), slog.String("error", err.Error()))
	}
	if err := s.index.IndexNote(ctx, n); err != nil {
		s.logger.Warn("indexing failed",
			slog.String("note_id", n.ID), slog.String("error", err.Error()))
	}
}

func (s *Service) buildDetail(ctx context.Context, n *models.Note) (*NoteDetail, error) {
	bl, err := s.graph.Backlinks(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if bl == nil {
		bl = []models.LinkedNote{}
	}
	return &NoteDetail{
		ID:        n.ID,
		OwnerID:   n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		Checksum:  n.Checksum,
		Backlinks: bl,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}, nil
}
