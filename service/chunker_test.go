package service

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/tieubaoca/docchat-be/types"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "simple sentences",
			text: "First sentence. Second sentence. Third sentence.",
			want: []string{"First sentence.", "Second sentence.", "Third sentence."},
		},
		{
			name: "mixed punctuation",
			text: "Really? Yes! Absolutely.",
			want: []string{"Really?", "Yes!", "Absolutely."},
		},
		{
			name: "repeated punctuation stays together",
			text: "Wait... what happened? Nothing.",
			want: []string{"Wait...", "what happened?", "Nothing."},
		},
		{
			name: "trailing text without punctuation",
			text: "A full sentence. then a fragment",
			want: []string{"A full sentence.", "then a fragment"},
		},
		{
			name: "no punctuation at all",
			text: "just one fragment of text",
			want: []string{"just one fragment of text"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLastSentence(t *testing.T) {
	if got := LastSentence("First. Second. Third."); got != "Third." {
		t.Errorf("LastSentence = %q, want %q", got, "Third.")
	}
	if got := LastSentence(""); got != "" {
		t.Errorf("LastSentence of empty text = %q, want empty", got)
	}
}

func TestChunkPageEmpty(t *testing.T) {
	chunker := NewChunker(DefaultChunkerConfig)
	if got := chunker.ChunkPage("   \n\t  ", 1, 1); got != nil {
		t.Errorf("expected no chunks for blank page, got %d", len(got))
	}
}

func TestChunkPageSmallTextSingleChunk(t *testing.T) {
	chunker := NewChunker(DefaultChunkerConfig)
	chunks := chunker.ChunkPage("One short sentence. Another short one.", 3, 2)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "One short sentence. Another short one." {
		t.Errorf("unexpected chunk text: %q", chunks[0].Text)
	}
	if chunks[0].TotalPages != 3 || chunks[0].PageNumber != 2 {
		t.Errorf("page metadata not carried: %+v", chunks[0])
	}
}

func TestChunkPageWhitespaceNormalized(t *testing.T) {
	chunker := NewChunker(DefaultChunkerConfig)
	chunks := chunker.ChunkPage("Spread   over\n\nlines. Second\tsentence.", 1, 1)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "Spread over lines. Second sentence." {
		t.Errorf("whitespace not collapsed: %q", chunks[0].Text)
	}
}

func TestChunkPageSizeAndBoundaryInvariants(t *testing.T) {
	chunker := NewChunker(types.ChunkerConfig{MaxChunkSize: 200, OverlapRatio: 0.15})

	var sb strings.Builder
	var sourceSentences []string
	for i := 0; i < 40; i++ {
		s := fmt.Sprintf("Sentence number %d carries some padding words here.", i)
		sourceSentences = append(sourceSentences, s)
		sb.WriteString(s)
		sb.WriteString(" ")
	}

	chunks := chunker.ChunkPage(sb.String(), 1, 1)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	sentenceSet := make(map[string]bool, len(sourceSentences))
	for _, s := range sourceSentences {
		sentenceSet[s] = true
	}

	for i, chunk := range chunks {
		if len(chunk.Text) > 200 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(chunk.Text))
		}
		// Every chunk must be a whitespace-join of whole source sentences.
		for _, s := range SplitSentences(chunk.Text) {
			if !sentenceSet[s] {
				t.Errorf("chunk %d contains partial sentence %q", i, s)
			}
		}
	}
}

func TestChunkPageOverlap(t *testing.T) {
	chunker := NewChunker(types.ChunkerConfig{MaxChunkSize: 200, OverlapRatio: 0.15})

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Overlap check sentence number %d with filler words. ", i)
	}

	chunks := chunker.ChunkPage(sb.String(), 1, 1)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		prev := SplitSentences(chunks[i-1].Text)
		curr := SplitSentences(chunks[i].Text)

		want := int(math.Ceil(float64(len(prev)) * 0.15))
		if want < 1 {
			want = 1
		}
		if len(curr) < want {
			t.Fatalf("chunk %d has %d sentences, want at least %d overlap", i, len(curr), want)
		}
		// The later chunk's leading sentences must be a suffix of the
		// earlier chunk's sentence list.
		for j := 0; j < want; j++ {
			if curr[j] != prev[len(prev)-want+j] {
				t.Errorf("chunk %d overlap sentence %d = %q, want %q",
					i, j, curr[j], prev[len(prev)-want+j])
			}
		}
	}
}

func TestChunkPageOversizedSentence(t *testing.T) {
	chunker := NewChunker(types.ChunkerConfig{MaxChunkSize: 100, OverlapRatio: 0.15})

	words := make([]string, 60)
	for i := range words {
		words[i] = fmt.Sprintf("word%02d", i)
	}
	oversized := strings.Join(words, " ") + "."

	chunks := chunker.ChunkPage(oversized, 1, 1)
	if len(chunks) < 2 {
		t.Fatalf("expected oversized sentence to split, got %d chunks", len(chunks))
	}

	var rejoined []string
	for i, chunk := range chunks {
		if len(chunk.Text) > 100 {
			t.Errorf("chunk %d exceeds size limit: %d chars", i, len(chunk.Text))
		}
		rejoined = append(rejoined, chunk.Text)
	}
	if strings.Join(rejoined, " ") != oversized {
		t.Error("oversized split lost or reordered words")
	}
}

func TestNewChunkerDefaults(t *testing.T) {
	chunker := NewChunker(types.ChunkerConfig{})
	if chunker.maxChunkSize != 1500 {
		t.Errorf("default max chunk size = %d, want 1500", chunker.maxChunkSize)
	}
	if chunker.overlapRatio != 0.15 {
		t.Errorf("default overlap ratio = %v, want 0.15", chunker.overlapRatio)
	}
}
