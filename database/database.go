package database

import (
	"context"

	"github.com/tieubaoca/docchat-be/types"
)

// NoMatchingResults is the sentinel returned by a vector query that found
// nothing. It distinguishes "nothing found" from "query failed".
const NoMatchingResults = "No matching results found."

// VectorStore defines the interface for chunk storage and similarity search
type VectorStore interface {
	// StoreChunks persists embedded chunks for a document. Implementations
	// batch the writes and retry failed batches before giving up.
	StoreChunks(ctx context.Context, documentID string, chunks []types.Chunk) error

	// Query searches a document's chunks by vector similarity and returns a
	// formatted context string, or NoMatchingResults when nothing matches.
	Query(ctx context.Context, vector []float32, documentID string, limit int) (string, error)

	// DeleteDocument removes every stored chunk belonging to a document.
	DeleteDocument(ctx context.Context, documentID string) error
}
