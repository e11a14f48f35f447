package notestore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mjelva/laguz/internal/apperr"
	"github.com/mjelva/laguz/internal/database"
	"github.com/mjelva/laguz/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "notes.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := New(testDB(t))

	content := []models.Block{
		models.TextBlock(models.BlockParagraph, "hello world"),
		models.ReferenceBlock("target-1", "see target"),
	}
	created, err := s.Create(ctx, "owner-1", "First Note", content)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Checksum == "" {
		t.Fatal("expected checksum")
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Error("created_at and updated_at should match on create")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "First Note" || got.OwnerID != "owner-1" {
		t.Errorf("unexpected note: %+v", got)
	}
	if len(got.Content) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(got.Content))
	}
	ref, ok := got.Content[1].DecodeReference()
	if !ok || ref.TargetID != "target-1" || ref.Label != "see target" {
		t.Errorf("reference block did not round-trip: %+v ok=%v", ref, ok)
	}
	if got.Checksum != created.Checksum {
		t.Error("checksum changed on read")
	}
}

func TestCreateNilContent(t *testing.T) {
	ctx := context.Background()
	s := New(testDB(t))

	created, err := s.Create(ctx, "owner-1", "Empty", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content == nil || len(got.Content) != 0 {
		t.Errorf("expected empty block slice, got %#v", got.Content)
	}
}

func TestGetMissing(t *testing.T) {
	s := New(testDB(t))
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	s := New(testDB(t))

	created, err := s.Create(ctx, "owner-1", "Before", []models.Block{
		models.TextBlock(models.BlockParagraph, "old"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := s.Update(ctx, created.ID, "After", []models.Block{
		models.TextBlock(models.BlockParagraph, "new"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "After" {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if updated.Checksum == created.Checksum {
		t.Error("checksum should change when content changes")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && !updated.UpdatedAt.Equal(created.UpdatedAt) {
		t.Error("updated_at went backwards")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("created_at must not change on update")
	}
}

func TestUpdateMissing(t *testing.T) {
	s := New(testDB(t))
	_, err := s.Update(context.Background(), "nope", "x", nil)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := New(testDB(t))

	created, err := s.Create(ctx, "owner-1", "Doomed", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestGetTitle(t *testing.T) {
	ctx := context.Background()
	s := New(testDB(t))

	created, err := s.Create(ctx, "owner-1", "Just The Title", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	title, err := s.GetTitle(ctx, created.ID)
	if err != nil {
		t.Fatalf("get title: %v", err)
	}
	if title != "Just The Title" {
		t.Errorf("got %q", title)
	}
	if _, err := s.GetTitle(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	s := New(testDB(t))

	for _, title := range []string{"banana", "apple", "cherry"} {
		if _, err := s.Create(ctx, "owner-1", title, nil); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	if _, err := s.Create(ctx, "owner-2", "other owner", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	items, total, err := s.List(ctx, "owner-1", 10, 0, SortTitle)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Title != "apple" || items[1].Title != "banana" || items[2].Title != "cherry" {
		t.Errorf("wrong title order: %+v", items)
	}

	page, total, err := s.List(ctx, "owner-1", 2, 2, SortTitle)
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if total != 3 {
		t.Errorf("total should ignore pagination, got %d", total)
	}
	if len(page) != 1 || page[0].Title != "cherry" {
		t.Errorf("wrong page: %+v", page)
	}
}

func TestListInvalidSort(t *testing.T) {
	s := New(testDB(t))
	if _, _, err := s.List(context.Background(), "owner-1", 10, 0, "checksum"); err == nil {
		t.Error("expected error for invalid sort field")
	}
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	s := New(testDB(t))

	if _, err := s.Create(ctx, "owner-1", "one", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "owner-2", "two", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 notes, got %d", len(all))
	}
}

func TestChecksumDeterministic(t *testing.T) {
	content := []models.Block{models.TextBlock(models.BlockParagraph, "same")}
	a := Checksum("Title", content)
	b := Checksum("Title", []models.Block{models.TextBlock(models.BlockParagraph, "same")})
	if a != b {
		t.Error("identical inputs must produce identical checksums")
	}
	if a == Checksum("Other", content) {
		t.Error("different titles must produce different checksums")
	}
}
