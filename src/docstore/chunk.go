// Package docstore ingests lecture documents, embeds them, and retrieves
// the most relevant sections for a chat query.
package docstore

import "github.com/sliitlabs/neuroai/src/storage"

// Chunk is one embedded section of an ingested document.
type Chunk struct {
	ID            string
	DocumentID    string
	DocumentTitle string
	Index         int
	Text          string
	Embedding     []float64
}

// DocumentMeta describes an ingested document.
type DocumentMeta struct {
	DocumentID string
	Title      string
	SourcePath string
	ChunkCount int
}

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Score float64
	Chunk Chunk
}

func chunkFromRow(row storage.DocumentChunk) Chunk {
	return Chunk{
		ID:            row.ID,
		DocumentID:    row.DocumentID,
		DocumentTitle: row.DocumentTitle,
		Index:         row.ChunkIndex,
		Text:          row.Content,
		Embedding:     row.Embedding,
	}
}
