package database

import (
	"path/filepath"
	"testing"
)

func TestOpenCreatesSchema(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "laguz.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"notes", "links", "search_index"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laguz.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := db.Exec(
		`INSERT INTO notes (id, owner_id, title, content, checksum, created_at, updated_at)
		 VALUES ('n1', 'o1', 'kept', '[]', 'cs', datetime('now'), datetime('now'))`,
	); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("reopening must preserve data, got %d rows", count)
	}
}

func TestLinksUniqueConstraint(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "laguz.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	insert := `INSERT INTO links (id, source_id, target_id, link_text, created_at)
	           VALUES (?, 'a', 'b', '', datetime('now'))`
	if _, err := db.Exec(insert, "l1"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := db.Exec(insert, "l2"); err == nil {
		t.Error("duplicate (source, target) pair must violate the unique constraint")
	}
}

func TestLinksSelfEdgeRejected(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "laguz.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`INSERT INTO links (id, source_id, target_id, link_text, created_at)
	                  VALUES ('l1', 'a', 'a', '', datetime('now'))`)
	if err == nil {
		t.Error("self edge must violate the check constraint")
	}
}
