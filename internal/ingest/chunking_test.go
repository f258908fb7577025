package ingest

import (
	"strings"
	"testing"

	"github.com/akash3sharma/AskMyNote-Code-Blooded/internal/models"
)

func TestChunkText_ShortTextSingleChunk(t *testing.T) {
	chunks := ChunkText("A short paragraph about enzymes.", ChunkingOptions{})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short paragraph about enzymes." {
		t.Errorf("unexpected chunk: %q", chunks[0])
	}
}

func TestChunkText_EmptyInput(t *testing.T) {
	if chunks := ChunkText("   \n\t  ", ChunkingOptions{}); chunks != nil {
		t.Errorf("expected no chunks for blank input, got %d", len(chunks))
	}
}

func TestChunkText_NormalizesWhitespace(t *testing.T) {
	chunks := ChunkText("Line one.\n\nLine   two.\tLine three.", ChunkingOptions{})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Line one. Line two. Line three." {
		t.Errorf("whitespace not collapsed: %q", chunks[0])
	}
}

func TestChunkText_SplitsLongText(t *testing.T) {
	sentence := "The mitochondrion is the powerhouse of the cell and produces ATP. "
	long := strings.Repeat(sentence, 40)

	options := ChunkingOptions{MaxChars: 700, OverlapChars: 120, MinChars: 80}
	chunks := ChunkText(long, options)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > options.MaxChars {
			t.Errorf("chunk %d exceeds max size: %d chars", i, len(chunk))
		}
		if i > 0 && len(chunk) < options.MinChars {
			t.Errorf("chunk %d below min size: %d chars", i, len(chunk))
		}
	}
}

func TestChunkText_OverlapCarriesContext(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("word")
		b.WriteString(strings.Repeat("x", i%5))
		b.WriteByte(' ')
	}

	chunks := ChunkText(b.String(), ChunkingOptions{MaxChars: 200, OverlapChars: 50, MinChars: 40})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// The tail of each chunk reappears at the head of the next.
	for i := 1; i < len(chunks); i++ {
		head := strings.Fields(chunks[i])[0]
		if !strings.Contains(chunks[i-1], head) {
			t.Errorf("chunk %d does not overlap with its predecessor", i)
		}
	}
}

func TestChunkText_BreaksOnWordBoundary(t *testing.T) {
	long := strings.Repeat("photosynthesis chlorophyll thylakoid granum stroma ", 30)
	chunks := ChunkText(long, ChunkingOptions{MaxChars: 200, OverlapChars: 40, MinChars: 40})

	for i, chunk := range chunks {
		if strings.HasSuffix(chunk, "photosynthes") || strings.HasSuffix(chunk, "chlorophyl") {
			t.Errorf("chunk %d ends mid-word: %q", i, chunk)
		}
	}
}

func TestChunkSections_PreservesSectionLabels(t *testing.T) {
	sections := []models.ParsedSection{
		{PageOrSection: "Page 1", Text: "First page content about osmosis and diffusion."},
		{PageOrSection: "Page 2", Text: "Second page content about active transport."},
	}

	chunks := ChunkSections(sections, ChunkingOptions{})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].PageOrSection != "Page 1" || chunks[1].PageOrSection != "Page 2" {
		t.Errorf("section labels not preserved: %+v", chunks)
	}
}

func TestChunkSections_SkipsEmptySections(t *testing.T) {
	sections := []models.ParsedSection{
		{PageOrSection: "Page 1", Text: "   "},
		{PageOrSection: "Page 2", Text: "Real content on the second page."},
	}

	chunks := ChunkSections(sections, ChunkingOptions{})
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].PageOrSection != "Page 2" {
		t.Errorf("unexpected section label: %q", chunks[0].PageOrSection)
	}
}
