package storage

import "time"

// Conversation is one persisted chat transcript.
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Provider  string    `json:"provider" db:"provider"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Message is one persisted turn of a conversation.
type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID string    `json:"conversation_id" db:"conversation_id"`
	Role           string    `json:"role" db:"role"`
	Content        string    `json:"content" db:"content"`
	Provider       string    `json:"provider" db:"provider"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// DocumentChunk is one embedded section of an ingested document. The
// embedding is stored as a JSON array in a TEXT column.
type DocumentChunk struct {
	ID            string       `json:"id" db:"id"`
	DocumentID    string       `json:"document_id" db:"document_id"`
	DocumentTitle string       `json:"document_title" db:"document_title"`
	ChunkIndex    int          `json:"chunk_index" db:"chunk_index"`
	Content       string       `json:"content" db:"content"`
	Embedding     Float64Array `json:"embedding" db:"embedding"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// Setting is a single key/value row in the settings table. The document
// store records the embedding model name here.
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
