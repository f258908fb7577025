// Package ingest turns parsed note sections into embedded chunks ready
// for retrieval.
package ingest

import (
	"strings"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/retrieval"
)

// ChunkingOptions bound chunk sizes. Overlapping chunks keep sentences
// that straddle a boundary retrievable from either side.
type ChunkingOptions struct {
	MaxChars     int
	OverlapChars int
	MinChars     int
}

func DefaultChunkingOptions() ChunkingOptions {
	return ChunkingOptions{
		MaxChars:     700,
		OverlapChars: 120,
		MinChars:     80,
	}
}

func (o ChunkingOptions) withDefaults() ChunkingOptions {
	defaults := DefaultChunkingOptions()
	if o.MaxChars <= 0 {
		o.MaxChars = defaults.MaxChars
	}
	if o.OverlapChars <= 0 {
		o.OverlapChars = defaults.OverlapChars
	}
	if o.MinChars <= 0 {
		o.MinChars = defaults.MinChars
	}
	return o
}

// ChunkText splits text into overlapping pieces of at most MaxChars,
// preferring to break on a space past 60% of the window. Pieces shorter
// than MinChars are dropped unless they are the only piece.
func ChunkText(text string, options ChunkingOptions) []string {
	config := options.withDefaults()
	normalized := retrieval.CleanText(text)

	if normalized == "" {
		return nil
	}
	if len(normalized) <= config.MaxChars {
		return []string{normalized}
	}

	var chunks []string
	cursor := 0

	for cursor < len(normalized) {
		end := cursor + config.MaxChars
		if end > len(normalized) {
			end = len(normalized)
		}

		if end < len(normalized) {
			boundary := strings.LastIndex(normalized[:end+1], " ")
			if boundary > cursor+config.MaxChars*6/10 {
				end = boundary
			}
		}

		piece := retrieval.CleanText(normalized[cursor:end])
		if len(piece) >= config.MinChars || len(chunks) == 0 {
			chunks = append(chunks, piece)
		}

		if end >= len(normalized) {
			break
		}

		next := end - config.OverlapChars
		if next < cursor+1 {
			next = cursor + 1
		}
		cursor = next
	}

	return chunks
}

// ChunkSections applies ChunkText per section, preserving each chunk's
// section label for citations.
func ChunkSections(sections []models.ParsedSection, options ChunkingOptions) []models.ParsedSection {
	var output []models.ParsedSection
	for _, section := range sections {
		for _, text := range ChunkText(section.Text, options) {
			output = append(output, models.ParsedSection{
				PageOrSection: section.PageOrSection,
				Text:          text,
			})
		}
	}
	return output
}
