package service

import (
	"math"
	"regexp"
	"strings"

	"github.com/tieubaoca/docchat-be/types"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Chunker splits page text into overlapping, sentence-aware chunks sized for
// embedding. Chunk boundaries always fall on sentence boundaries except when
// a single sentence is itself longer than the chunk limit.
type Chunker struct {
	maxChunkSize int
	overlapRatio float64
}

var DefaultChunkerConfig = types.ChunkerConfig{
	MaxChunkSize: 1500,
	OverlapRatio: 0.15,
}

func NewChunker(cfg types.ChunkerConfig) *Chunker {
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = DefaultChunkerConfig.MaxChunkSize
	}
	if cfg.OverlapRatio <= 0 {
		cfg.OverlapRatio = DefaultChunkerConfig.OverlapRatio
	}
	return &Chunker{
		maxChunkSize: cfg.MaxChunkSize,
		overlapRatio: cfg.OverlapRatio,
	}
}

// SplitSentences splits text into sentences on runs of '.', '!' and '?'
// followed by a space or end of input. Trailing text without terminal
// punctuation is returned as a final sentence.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i
		for j+1 < len(text) && (text[j+1] == '.' || text[j+1] == '!' || text[j+1] == '?') {
			j++
		}
		if j+1 >= len(text) || text[j+1] == ' ' {
			if s := strings.TrimSpace(text[start : j+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// LastSentence returns the trimmed last sentence of text, or "" when text has
// none. Used to carry trailing context across chunk boundaries.
func LastSentence(text string) string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return ""
	}
	return strings.TrimSpace(sentences[len(sentences)-1])
}

// ChunkPage splits a single page's text into pre-chunks. The caller assigns
// global chunk ids and the cross-chunk context field, since those require
// document-wide sequencing.
func (c *Chunker) ChunkPage(pageText string, totalPages, pageNumber int) []types.PreChunk {
	processed := strings.TrimSpace(whitespaceRe.ReplaceAllString(pageText, " "))
	if processed == "" {
		return nil
	}

	sentences := SplitSentences(processed)
	if len(sentences) == 0 {
		// Splitter found nothing usable, keep the page as one chunk.
		return []types.PreChunk{{
			Text:       processed,
			TotalPages: totalPages,
			PageNumber: pageNumber,
		}}
	}

	var chunks []types.PreChunk
	addChunk := func(sentencesToAdd []string) {
		text := strings.TrimSpace(strings.Join(sentencesToAdd, " "))
		if text == "" {
			return
		}
		chunks = append(chunks, types.PreChunk{
			Text:       text,
			TotalPages: totalPages,
			PageNumber: pageNumber,
		})
	}

	var current []string
	currentChars := 0

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		sentenceLen := len(sentence)

		if sentenceLen > c.maxChunkSize {
			// Oversized sentence: flush what we have, then pack the
			// sentence's words into sub-chunks without overlap.
			if len(current) > 0 {
				addChunk(current)
				current = nil
				currentChars = 0
			}
			for _, part := range c.splitOversized(sentence) {
				addChunk([]string{part})
			}
			continue
		}

		potentialSize := currentChars + sentenceLen
		if len(current) > 0 {
			potentialSize++ // joining space
		}

		if potentialSize > c.maxChunkSize && len(current) > 0 {
			addChunk(current)

			overlapCount := int(math.Ceil(float64(len(current)) * c.overlapRatio))
			if overlapCount < 1 {
				overlapCount = 1
			}
			overlapStart := len(current) - overlapCount
			if overlapStart < 0 {
				overlapStart = 0
			}
			overlap := append([]string{}, current[overlapStart:]...)

			current = append(overlap, sentence)
		} else {
			current = append(current, sentence)
		}
		currentChars = len(strings.Join(current, " "))
	}

	if len(current) > 0 {
		addChunk(current)
	}

	return chunks
}

// splitOversized greedily packs the words of one oversized sentence into
// parts bounded by maxChunkSize. Last-resort path for malformed input.
func (c *Chunker) splitOversized(sentence string) []string {
	words := strings.Split(sentence, " ")
	var parts []string
	part := ""
	for _, word := range words {
		potential := len(part) + len(word)
		if part != "" {
			potential++
		}
		if potential > c.maxChunkSize && part != "" {
			parts = append(parts, part)
			part = word
		} else {
			if part == "" {
				part = word
			} else {
				part = part + " " + word
			}
		}
	}
	if part != "" {
		parts = append(parts, part)
	}
	return parts
}
