package types

// PreChunk is a page-local chunk produced by the chunker. The document
// processing node assigns the global id and the cross-chunk context, since
// those need document-wide sequencing the per-page chunker cannot know.
type PreChunk struct {
	Text       string
	TotalPages int
	PageNumber int
}

// Chunk is the unit of indexable text, immutable once stored.
type Chunk struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Metadata  ChunkMetadata `json:"metadata"`
	Embedding []float32     `json:"embedding,omitempty"`
}

type ChunkMetadata struct {
	TotalPages int    `json:"totalPages"`
	PageNumber int    `json:"pageNumber"`
	ChunkIndex int    `json:"chunkIndex"`
	Context    string `json:"context"`
	DocumentID string `json:"documentId"`
}

// PageContent holds the extracted text of a single PDF page.
type PageContent struct {
	Text       string
	PageNumber int
}

// ExtractResult is the output of PDF text extraction.
type ExtractResult struct {
	PagesData        []PageContent
	TotalPages       int
	TokenCount       int
	RawExtractedText string
}

// ChunkerConfig contains configuration options for the sentence-aware chunker
type ChunkerConfig struct {
	MaxChunkSize int     // Maximum size of a chunk in characters
	OverlapRatio float64 // Fraction of sentences carried into the next chunk
}

type UploadRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
}
