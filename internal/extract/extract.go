// Package extract derives note-to-note references from block content.
package extract

import "github.com/mjelva/laguz/internal/models"

// Refs returns the distinct references found in a note's content, in first
// occurrence order. Self-references and duplicate targets are dropped; for a
// duplicated target the first display text wins. Malformed reference payloads
// are skipped silently; final validation against the note store happens
// during link reconciliation.
//
// Pure function: no I/O, no side effects.
func Refs(sourceID string, content []models.Block) []models.LinkRef {
	seen := make(map[string]struct{})
	var out []models.LinkRef
	for _, b := range content {
		ref, ok := b.DecodeReference()
		if !ok {
			continue
		}
		if ref.TargetID == sourceID {
			continue
		}
		if _, dup := seen[ref.TargetID]; dup {
			continue
		}
		seen[ref.TargetID] = struct{}{}
		out = append(out, models.LinkRef{TargetID: ref.TargetID, LinkText: ref.Label})
	}
	return out
}
