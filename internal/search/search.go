// Package search ranks notes against free-text queries using the entries
// maintained by the index package.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mjelva/laguz/internal/index"
	"github.com/mjelva/laguz/internal/models"
)

// Weights holds the tunable scoring constants. Exact magnitudes are a policy
// choice; only the ordering guarantees are load-bearing.
type Weights struct {
	// TitleExactScore is assigned when the normalized query is a substring
	// of the lower-cased title. It must dominate any trigram overlap, so it
	// is the maximum reachable score.
	TitleExactScore float64 `yaml:"title_exact_score"`
	// ContentBaseScore is assigned when the normalized query appears in the
	// flattened content text, before the position penalty.
	ContentBaseScore float64 `yaml:"content_base_score"`
	// PositionPenalty scales how much a match loses by appearing later in
	// the content text. The penalty is PositionPenalty * offset/len(text),
	// so it never exceeds PositionPenalty and earlier matches always rank
	// higher within the content branch.
	PositionPenalty float64 `yaml:"position_penalty"`
	// SnippetWidth is the window size (in bytes of the flattened text)
	// around a content match.
	SnippetWidth int `yaml:"snippet_width"`
	// PageSize caps the number of returned results.
	PageSize int `yaml:"page_size"`
}

// DefaultWeights returns the stock scoring configuration.
func DefaultWeights() Weights {
	return Weights{
		TitleExactScore:  1.0,
		ContentBaseScore: 0.5,
		PositionPenalty:  0.1,
		SnippetWidth:     120,
		PageSize:         20,
	}
}

// EntrySource supplies candidate entries scoped to one owner.
type EntrySource interface {
	EntriesForOwner(ctx context.Context, ownerID string) ([]index.Entry, error)
}

// Engine scores and ranks search queries.
type Engine struct {
	entries EntrySource
	weights Weights
}

// NewEngine creates an Engine. Zero-valued weights fall back to defaults.
func NewEngine(entries EntrySource, weights Weights) *Engine {
	def := DefaultWeights()
	if weights.TitleExactScore <= 0 {
		weights.TitleExactScore = def.TitleExactScore
	}
	if weights.ContentBaseScore <= 0 {
		weights.ContentBaseScore = def.ContentBaseScore
	}
	if weights.PositionPenalty <= 0 {
		weights.PositionPenalty = def.PositionPenalty
	}
	if weights.SnippetWidth <= 0 {
		weights.SnippetWidth = def.SnippetWidth
	}
	if weights.PageSize <= 0 {
		weights.PageSize = def.PageSize
	}
	return &Engine{entries: entries, weights: weights}
}

// Search scores every candidate entry of the owner against the query and
// returns the ranked page plus the total number of matches before
// truncation. An empty or whitespace-only query returns no results and a
// zero count without error.
func (e *Engine) Search(ctx context.Context, query, ownerID string, limit int) ([]models.SearchResult, int, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.SearchResult{}, 0, nil
	}
	if limit <= 0 || limit > e.weights.PageSize {
		limit = e.weights.PageSize
	}

	entries, err := e.entries.EntriesForOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, fmt.Errorf("search: load candidates: %w", err)
	}

	queryTrigrams := index.Trigrams(q)
	var matches []models.SearchResult
	for _, entry := range entries {
		if r, ok := e.score(q, queryTrigrams, entry); ok {
			matches = append(matches, r)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.NoteID < b.NoteID
	})

	total := len(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if matches == nil {
		matches = []models.SearchResult{}
	}
	return matches, total, nil
}

// score computes the title and content branches for one entry and returns
// the combined result, or ok=false when neither branch matches.
func (e *Engine) score(q string, queryTrigrams map[string]struct{}, entry index.Entry) (models.SearchResult, bool) {
	titleScore := e.titleScore(q, queryTrigrams, entry)
	contentScore, matchPos := e.contentScore(q, entry.ContentText)

	score := titleScore
	matchType := models.MatchTitle
	if titleScore == 0 || contentScore > titleScore {
		score = contentScore
		matchType = models.MatchContent
	}
	if score <= 0 {
		return models.SearchResult{}, false
	}

	snippet := entry.Title
	if matchType == models.MatchContent {
		snippet = e.snippet(entry.ContentText, matchPos, len(q))
	}

	return models.SearchResult{
		NoteID:    entry.NoteID,
		Title:     entry.Title,
		Snippet:   snippet,
		MatchType: matchType,
		Score:     score,
		UpdatedAt: entry.UpdatedAt,
	}, true
}

// titleScore short-circuits to the maximal score on an exact case-insensitive
// substring match, otherwise falls back to trigram Jaccard similarity.
func (e *Engine) titleScore(q string, queryTrigrams map[string]struct{}, entry index.Entry) float64 {
	if strings.Contains(strings.ToLower(entry.Title), q) {
		return e.weights.TitleExactScore
	}
	return index.Jaccard(queryTrigrams, entry.TitleTrigrams) * e.weights.TitleExactScore
}

// contentScore assigns the base score when the query appears in the flattened
// text, reduced by a penalty proportional to how far into the text the match
// sits. Returns the byte offset of the match for snippet anchoring.
func (e *Engine) contentScore(q, text string) (float64, int) {
	pos := strings.Index(strings.ToLower(text), q)
	if pos < 0 {
		return 0, -1
	}
	// Case folds that change byte length (Turkish dotted I and friends)
	// shift offsets between the lowered and the original text, so the
	// anchor may drift; clamp it into range and let snippet settle the
	// window on rune boundaries.
	if pos > len(text) {
		pos = len(text)
	}
	penalty := 0.0
	if len(text) > 0 {
		penalty = e.weights.PositionPenalty * float64(pos) / float64(len(text))
	}
	return e.weights.ContentBaseScore - penalty, pos
}

// snippet returns a fixed-width window of the flattened text centered on the
// match, clipped edges marked with ellipses.
func (e *Engine) snippet(text string, pos, matchLen int) string {
	width := e.weights.SnippetWidth
	if len(text) <= width {
		return text
	}
	start := pos + matchLen/2 - width/2
	if start < 0 {
		start = 0
	}
	end := start + width
	if end > len(text) {
		end = len(text)
		start = end - width
	}
	// Byte-offset windows can land inside a multi-byte rune; settle both
	// edges on rune boundaries so the snippet stays valid UTF-8.
	for start < end && !utf8.RuneStart(text[start]) {
		start++
	}
	for end > start && end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}
	out := text[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out += "..."
	}
	return out
}
