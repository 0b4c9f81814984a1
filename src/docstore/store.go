package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sliitlabs/neuroai/src/storage"
)

const embeddingModelKey = "embedding_model"

// Store persists embedded document chunks and retrieves the most relevant
// ones for a query.
type Store struct {
	db       *storage.DB
	embedder Embedder
	logger   *slog.Logger

	topK         int
	chunkSize    int
	chunkOverlap int
}

// StoreOptions configures a Store. Zero values take the ingestion
// pipeline's defaults (600-word chunks, 120-word overlap, top 3 results).
type StoreOptions struct {
	TopK         int
	ChunkSize    int
	ChunkOverlap int
	Logger       *slog.Logger
}

// NewStore creates a document store backed by db and embedder.
func NewStore(db *storage.DB, embedder Embedder, opts StoreOptions) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 3
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 600
	}
	chunkOverlap := opts.ChunkOverlap
	if chunkOverlap <= 0 {
		chunkOverlap = 120
	}

	return &Store{
		db:           db,
		embedder:     embedder,
		logger:       logger.With("component", "docstore"),
		topK:         topK,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// IngestOptions tweaks a single ingestion.
type IngestOptions struct {
	// Title overrides the title derived from the document.
	Title string
}

// IngestFile extracts, chunks, embeds, and stores one document. Chunks
// previously stored under the same title are replaced.
func (s *Store) IngestFile(ctx context.Context, path string, opts IngestOptions) (*DocumentMeta, error) {
	title, text, err := ExtractFile(path)
	if err != nil {
		return nil, err
	}
	if opts.Title != "" {
		title = opts.Title
	}

	chunks := SplitWords(text, s.chunkSize, s.chunkOverlap)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("could not split %s into text chunks", path)
	}

	embeddings, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	documentID := uuid.New().String()
	s.logger.Info("ingesting document", "title", title, "chunks", len(chunks))

	if err := storage.DeleteDocumentChunksByTitle(ctx, s.db.DB(), title); err != nil {
		return nil, fmt.Errorf("failed to replace existing chunks: %w", err)
	}
	for i, chunkText := range chunks {
		row := &storage.DocumentChunk{
			ID:            fmt.Sprintf("%s:%d", documentID, i),
			DocumentID:    documentID,
			DocumentTitle: title,
			ChunkIndex:    i,
			Content:       chunkText,
			Embedding:     embeddings[i],
		}
		if err := storage.InsertDocumentChunk(ctx, s.db.DB(), row); err != nil {
			return nil, fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
	}

	if err := storage.SetSetting(ctx, s.db.DB(), embeddingModelKey, s.embedder.Model()); err != nil {
		return nil, fmt.Errorf("failed to record embedding model: %w", err)
	}

	return &DocumentMeta{
		DocumentID: documentID,
		Title:      title,
		SourcePath: path,
		ChunkCount: len(chunks),
	}, nil
}

// Search embeds the query and returns the topK most similar chunks. Chunks
// with non-positive similarity are never returned.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		topK = s.topK
	}

	rows, err := storage.ListDocumentChunks(ctx, s.db.DB())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embeddings API returned no vector for the query")
	}
	queryEmbedding := vectors[0]

	var scored []ScoredChunk
	for _, row := range rows {
		score := CosineSimilarity(queryEmbedding, row.Embedding)
		if score > 0 {
			scored = append(scored, ScoredChunk{Score: score, Chunk: chunkFromRow(row)})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// HasContent reports whether at least one chunk is stored.
func (s *Store) HasContent(ctx context.Context) (bool, error) {
	count, err := storage.CountDocumentChunks(ctx, s.db.DB())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Documents lists the ingested documents.
func (s *Store) Documents(ctx context.Context) ([]DocumentMeta, error) {
	summaries, err := storage.ListDocumentTitles(ctx, s.db.DB())
	if err != nil {
		return nil, err
	}
	docs := make([]DocumentMeta, 0, len(summaries))
	for _, sum := range summaries {
		docs = append(docs, DocumentMeta{
			DocumentID: sum.DocumentID,
			Title:      sum.DocumentTitle,
			ChunkCount: sum.ChunkCount,
		})
	}
	return docs, nil
}

// EmbeddingModel returns the model name recorded at ingestion time.
func (s *Store) EmbeddingModel(ctx context.Context) (string, error) {
	return storage.GetSetting(ctx, s.db.DB(), embeddingModelKey)
}

// BuildSystemPrompt creates a system prompt that injects lecture excerpts
// into the chat.
func BuildSystemPrompt(chunks []Chunk) string {
	intro := "You are Neuro AI, a helpful study assistant for SLIIT students. Use the " +
		"following lecture excerpts when formulating your answer. If the " +
		"information is not present, acknowledge that you do not know."

	sections := []string{intro, "---"}
	for _, chunk := range chunks {
		header := fmt.Sprintf("Source: %s (section %d)", chunk.DocumentTitle, chunk.Index+1)
		sections = append(sections, header+"\n"+chunk.Text)
		sections = append(sections, "---")
	}
	sections = append(sections,
		"When answering, cite the relevant course material when possible and keep the "+
			"focus on SLIIT curricula.")
	return strings.Join(sections, "\n\n")
}
