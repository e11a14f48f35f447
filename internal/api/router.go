package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/mjelva/laguz/internal/noteservice"
	"github.com/mjelva/laguz/internal/sse"
	"github.com/mjelva/laguz/internal/storage"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, receives note change events and is mounted at GET /events.
// files backs the attachments upload endpoint.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, broker *sse.Broker, files storage.Provider) chi.Router {
	h := NewHandler(svc, broker)
	ah := NewAttachmentHandler(files)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Note graph.
	r.Get("/notes/{id}/backlinks", h.Backlinks)
	r.Get("/notes/{id}/links", h.OutgoingLinks)
	r.Get("/graph", h.Graph)

	// Search.
	r.Get("/search", h.Search)

	// Attachments upload (auth-protected).
	r.Post("/attachments", ah.Upload)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
