// Package testutil provides shared test helpers for setting up databases and
// services.
package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/mjelva/laguz/internal/database"
	"github.com/mjelva/laguz/internal/graph"
	"github.com/mjelva/laguz/internal/index"
	"github.com/mjelva/laguz/internal/noteservice"
	"github.com/mjelva/laguz/internal/notestore"
	"github.com/mjelva/laguz/internal/search"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "laguz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := database.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestService builds a full note service stack on a temporary database.
func TestService(t *testing.T) *noteservice.Service {
	t.Helper()
	db := TestDB(t)
	notes := notestore.New(db)
	indexer := index.New(db)
	engine := search.NewEngine(indexer, search.DefaultWeights())
	return noteservice.New(notes, graph.New(db, nil), indexer, engine, nil)
}
