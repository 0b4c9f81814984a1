package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenRunsMigrations(t *testing.T) {
	db := openTestDB(t)

	applied, err := db.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations() error = %v", err)
	}
	if len(applied) != 1 || applied[0] != 1 {
		t.Errorf("AppliedMigrations() = %v, want [1]", applied)
	}
}

func TestConversationRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	conv := &Conversation{Title: "lecture questions", Provider: "openai"}
	if err := CreateConversation(ctx, db.DB(), conv); err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if conv.ID == "" {
		t.Fatal("expected conversation ID to be assigned")
	}

	for _, m := range []*Message{
		{ConversationID: conv.ID, Role: "user", Content: "what is a B-tree?"},
		{ConversationID: conv.ID, Role: "assistant", Content: "a balanced search tree", Provider: "openai"},
	} {
		if err := CreateMessage(ctx, db.DB(), m); err != nil {
			t.Fatalf("CreateMessage() error = %v", err)
		}
	}

	got, err := GetConversationByID(ctx, db.DB(), conv.ID)
	if err != nil {
		t.Fatalf("GetConversationByID() error = %v", err)
	}
	if got == nil || got.Title != "lecture questions" {
		t.Errorf("GetConversationByID() = %+v", got)
	}

	missing, err := GetConversationByID(ctx, db.DB(), "nope")
	if err != nil {
		t.Fatalf("GetConversationByID(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing conversation, got %+v", missing)
	}

	messages, err := GetMessagesByConversationID(ctx, db.DB(), conv.ID)
	if err != nil {
		t.Fatalf("GetMessagesByConversationID() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != "user" || messages[1].Role != "assistant" {
		t.Errorf("messages out of order: %+v", messages)
	}
}

func TestDocumentChunkQueries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	chunks := []*DocumentChunk{
		{DocumentID: "doc-1", DocumentTitle: "Databases Week 3", ChunkIndex: 0, Content: "indexes", Embedding: Float64Array{0.1, 0.2}},
		{DocumentID: "doc-1", DocumentTitle: "Databases Week 3", ChunkIndex: 1, Content: "joins", Embedding: Float64Array{0.3, 0.4}},
		{DocumentID: "doc-2", DocumentTitle: "Networks Week 1", ChunkIndex: 0, Content: "osi model", Embedding: Float64Array{0.5, 0.6}},
	}
	for _, c := range chunks {
		if err := InsertDocumentChunk(ctx, db.DB(), c); err != nil {
			t.Fatalf("InsertDocumentChunk() error = %v", err)
		}
	}

	count, err := CountDocumentChunks(ctx, db.DB())
	if err != nil {
		t.Fatalf("CountDocumentChunks() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountDocumentChunks() = %d, want 3", count)
	}

	all, err := ListDocumentChunks(ctx, db.DB())
	if err != nil {
		t.Fatalf("ListDocumentChunks() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListDocumentChunks() returned %d chunks", len(all))
	}
	if len(all[0].Embedding) != 2 || all[0].Embedding[0] != 0.1 {
		t.Errorf("embedding did not round-trip: %v", all[0].Embedding)
	}

	titles, err := ListDocumentTitles(ctx, db.DB())
	if err != nil {
		t.Fatalf("ListDocumentTitles() error = %v", err)
	}
	if len(titles) != 2 || titles[0].ChunkCount != 2 {
		t.Errorf("ListDocumentTitles() = %+v", titles)
	}

	// Re-ingesting a title replaces its chunks.
	if err := DeleteDocumentChunksByTitle(ctx, db.DB(), "Databases Week 3"); err != nil {
		t.Fatalf("DeleteDocumentChunksByTitle() error = %v", err)
	}
	count, _ = CountDocumentChunks(ctx, db.DB())
	if count != 1 {
		t.Errorf("after delete, CountDocumentChunks() = %d, want 1", count)
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	val, err := GetSetting(ctx, db.DB(), "embedding_model")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if val != "" {
		t.Errorf("expected empty value for missing key, got %q", val)
	}

	if err := SetSetting(ctx, db.DB(), "embedding_model", "text-embedding-3-small"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := SetSetting(ctx, db.DB(), "embedding_model", "text-embedding-3-large"); err != nil {
		t.Fatalf("SetSetting() upsert error = %v", err)
	}

	val, err = GetSetting(ctx, db.DB(), "embedding_model")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if val != "text-embedding-3-large" {
		t.Errorf("GetSetting() = %q, want text-embedding-3-large", val)
	}
}
