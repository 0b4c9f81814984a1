package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
)

// Execer is an interface for executing SQL statements
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// CreateConversation creates a new conversation in the database
func CreateConversation(ctx context.Context, db Execer, conversation *Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	if conversation.UpdatedAt.IsZero() {
		conversation.UpdatedAt = time.Now()
	}

	query := `INSERT INTO conversations (id, title, provider, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, conversation.ID, conversation.Title, conversation.Provider, conversation.CreatedAt, conversation.UpdatedAt)
	return err
}

// GetConversationByID retrieves a conversation by its ID
func GetConversationByID(ctx context.Context, db sqlscan.Querier, conversationID string) (*Conversation, error) {
	query := `SELECT id, title, provider, created_at, updated_at FROM conversations WHERE id = ?`
	var conv Conversation
	err := sqlscan.Get(ctx, db, &conv, query, conversationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	return &conv, nil
}

// TouchConversation bumps a conversation's updated_at timestamp.
func TouchConversation(ctx context.Context, db Execer, conversationID string) error {
	query := `UPDATE conversations SET updated_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, time.Now(), conversationID)
	return err
}

// CreateMessage creates a new message in the database
func CreateMessage(ctx context.Context, db Execer, message *Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	query := `INSERT INTO messages (id, conversation_id, role, content, provider, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, message.ID, message.ConversationID, message.Role, message.Content, message.Provider, message.CreatedAt)
	return err
}

// GetMessagesByConversationID retrieves all messages for a conversation ordered by creation time
func GetMessagesByConversationID(ctx context.Context, db sqlscan.Querier, conversationID string) ([]Message, error) {
	query := `SELECT id, conversation_id, role, content, provider, created_at FROM messages WHERE conversation_id = ? ORDER BY created_at`
	var messages []Message
	err := sqlscan.Select(ctx, db, &messages, query, conversationID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// InsertDocumentChunk inserts a single document chunk.
func InsertDocumentChunk(ctx context.Context, db Execer, chunk *DocumentChunk) error {
	if chunk.ID == "" {
		chunk.ID = uuid.New().String()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now()
	}

	query := `INSERT INTO document_chunks (id, document_id, document_title, chunk_index, content, embedding, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query, chunk.ID, chunk.DocumentID, chunk.DocumentTitle, chunk.ChunkIndex, chunk.Content, chunk.Embedding, chunk.CreatedAt)
	return err
}

// DeleteDocumentChunksByTitle removes every chunk stored under the given
// document title. Re-ingesting a document replaces its chunks.
func DeleteDocumentChunksByTitle(ctx context.Context, db Execer, title string) error {
	query := `DELETE FROM document_chunks WHERE document_title = ?`
	_, err := db.ExecContext(ctx, query, title)
	return err
}

// ListDocumentChunks retrieves every stored chunk ordered by document and
// position.
func ListDocumentChunks(ctx context.Context, db sqlscan.Querier) ([]DocumentChunk, error) {
	query := `SELECT id, document_id, document_title, chunk_index, content, embedding, created_at FROM document_chunks ORDER BY document_title, chunk_index`
	var chunks []DocumentChunk
	err := sqlscan.Select(ctx, db, &chunks, query)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// CountDocumentChunks returns the number of stored chunks.
func CountDocumentChunks(ctx context.Context, db sqlscan.Querier) (int, error) {
	var count int
	err := sqlscan.Get(ctx, db, &count, `SELECT COUNT(*) FROM document_chunks`)
	return count, err
}

// ListDocumentTitles returns the distinct ingested document titles with
// their chunk counts.
type DocumentSummary struct {
	DocumentID    string `db:"document_id"`
	DocumentTitle string `db:"document_title"`
	ChunkCount    int    `db:"chunk_count"`
}

func ListDocumentTitles(ctx context.Context, db sqlscan.Querier) ([]DocumentSummary, error) {
	query := `SELECT document_id, document_title, COUNT(*) as chunk_count FROM document_chunks GROUP BY document_id, document_title ORDER BY document_title`
	var docs []DocumentSummary
	err := sqlscan.Select(ctx, db, &docs, query)
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// GetSetting retrieves a settings row value, or "" when absent.
func GetSetting(ctx context.Context, db sqlscan.Querier, key string) (string, error) {
	var s Setting
	err := sqlscan.Get(ctx, db, &s, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return s.Value, nil
}

// SetSetting upserts a settings row.
func SetSetting(ctx context.Context, db Execer, key, value string) error {
	query := `INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := db.ExecContext(ctx, query, key, value, time.Now())
	return err
}
