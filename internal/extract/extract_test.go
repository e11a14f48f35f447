package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mjelva/laguz/internal/models"
)

func TestRefs_Basic(t *testing.T) {
	content := []models.Block{
		models.TextBlock(models.BlockParagraph, "intro"),
		models.ReferenceBlock("note-b", "see B"),
		models.ReferenceBlock("note-c", ""),
	}
	refs := Refs("note-a", content)
	assert.Equal(t, []models.LinkRef{
		{TargetID: "note-b", LinkText: "see B"},
		{TargetID: "note-c"},
	}, refs)
}

func TestRefs_DeduplicatesKeepingFirstLabel(t *testing.T) {
	content := []models.Block{
		models.ReferenceBlock("note-b", "first"),
		models.ReferenceBlock("note-b", "second"),
	}
	refs := Refs("note-a", content)
	assert.Len(t, refs, 1)
	assert.Equal(t, "first", refs[0].LinkText)
}

func TestRefs_SkipsSelfReference(t *testing.T) {
	content := []models.Block{
		models.ReferenceBlock("note-a", "me"),
		models.ReferenceBlock("note-b", ""),
	}
	refs := Refs("note-a", content)
	assert.Equal(t, []models.LinkRef{{TargetID: "note-b"}}, refs)
}

func TestRefs_IgnoresNonReferenceBlocks(t *testing.T) {
	content := []models.Block{
		models.TextBlock(models.BlockHeading, "title"),
		models.ImageBlock("/attachments/x.png", "diagram"),
		{Type: "embed", Data: json.RawMessage(`{"url":"https://example.com"}`)},
	}
	assert.Empty(t, Refs("note-a", content))
}

func TestRefs_SkipsMalformedPayloads(t *testing.T) {
	content := []models.Block{
		{Type: models.BlockReference, Data: json.RawMessage(`{invalid`)},
		{Type: models.BlockReference, Data: json.RawMessage(`{"label":"no target"}`)},
		models.ReferenceBlock("note-b", ""),
	}
	refs := Refs("note-a", content)
	assert.Equal(t, []models.LinkRef{{TargetID: "note-b"}}, refs)
}

func TestRefs_EmptyContent(t *testing.T) {
	assert.Empty(t, Refs("note-a", nil))
	assert.Empty(t, Refs("note-a", []models.Block{}))
}
