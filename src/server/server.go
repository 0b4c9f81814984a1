// Package server exposes the chat engine over HTTP: the embedded chat page,
// the JSON chat API, and the health/stats/metrics endpoints.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/sliitlabs/neuroai/src/docstore"
	"github.com/sliitlabs/neuroai/src/engine"
	"github.com/sliitlabs/neuroai/src/llm"
	"github.com/sliitlabs/neuroai/src/storage"
)

//go:embed static/index.html
var staticFS embed.FS

const emptyMessageError = "Please provide a prompt for Neuro AI."

// Server handles the Neuro AI HTTP API.
type Server struct {
	engine  *engine.Engine
	docs    *docstore.Store
	db      *storage.DB
	logger  *slog.Logger
	metrics *Metrics

	startTime    time.Time
	chatRequests atomic.Int64
	chatFailures atomic.Int64

	mu             sync.Mutex
	conversationID string
}

// Options configures a Server. DB enables transcript persistence and Docs
// feeds the ingested-chunk gauge; both are optional.
type Options struct {
	Docs   *docstore.Store
	DB     *storage.DB
	Logger *slog.Logger
}

// New creates a Server around eng.
func New(eng *engine.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:    eng,
		docs:      opts.Docs,
		db:        opts.DB,
		logger:    logger.With("component", "server"),
		metrics:   NewMetrics(),
		startTime: time.Now(),
	}
}

// Handler returns the routed HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return s.withObservability(withBodyLimit(mux))
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

type chatRequest struct {
	Message string            `json:"message"`
	History []json.RawMessage `json:"history"`
}

type chatResponse struct {
	Response string        `json:"response"`
	History  []llm.Message `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	// A malformed body is treated like an empty one, so the user still
	// gets the prompt-required message.
	var req chatRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, emptyMessageError)
		return
	}

	history := sanitizeRawHistory(req.History)
	history = append(history, llm.Message{Role: llm.RoleUser, Content: message})

	s.chatRequests.Add(1)
	text, err := s.engine.Respond(r.Context(), history, engine.RespondOptions{})
	if err != nil {
		s.chatFailures.Add(1)
		s.metrics.ChatRequestsTotal.WithLabelValues("error").Inc()
		s.logger.Error("chat generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.ChatRequestsTotal.WithLabelValues("success").Inc()

	history = append(history, llm.Message{Role: llm.RoleAssistant, Content: text})
	s.persistExchange(r.Context(), message, text)
	s.updateChunkGauge(r.Context())

	writeJSON(w, http.StatusOK, chatResponse{Response: text, History: history})
}

// sanitizeRawHistory drops entries that are not objects or that carry
// non-string role/content, then applies the shared role filter.
func sanitizeRawHistory(raw []json.RawMessage) []llm.Message {
	history := make([]llm.Message, 0, len(raw))
	for _, entry := range raw {
		var turn llm.Message
		if err := json.Unmarshal(entry, &turn); err != nil {
			continue
		}
		history = append(history, turn)
	}
	return llm.SanitizeHistory(history)
}

// persistExchange writes the completed turn pair when storage is
// configured. Failures are logged, never surfaced to the client.
func (s *Server) persistExchange(ctx context.Context, userText, assistantText string) {
	if s.db == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conversationID == "" {
		conv := &storage.Conversation{Title: "web chat", Provider: s.engine.DefaultProvider()}
		if err := storage.CreateConversation(ctx, s.db.DB(), conv); err != nil {
			s.logger.Warn("could not create transcript conversation", "error", err)
			return
		}
		s.conversationID = conv.ID
	}

	for _, m := range []*storage.Message{
		{ConversationID: s.conversationID, Role: llm.RoleUser, Content: userText},
		{ConversationID: s.conversationID, Role: llm.RoleAssistant, Content: assistantText, Provider: s.engine.DefaultProvider()},
	} {
		if err := storage.CreateMessage(ctx, s.db.DB(), m); err != nil {
			s.logger.Warn("could not persist transcript message", "error", err)
			return
		}
	}
	if err := storage.TouchConversation(ctx, s.db.DB(), s.conversationID); err != nil {
		s.logger.Warn("could not touch transcript conversation", "error", err)
	}
}

func (s *Server) updateChunkGauge(ctx context.Context) {
	if s.docs == nil || s.db == nil {
		return
	}
	count, err := storage.CountDocumentChunks(ctx, s.db.DB())
	if err != nil {
		return
	}
	s.metrics.IngestedChunksTotal.Set(float64(count))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

type statsResponse struct {
	UptimeSeconds  float64  `json:"uptime_seconds"`
	ChatRequests   int64    `json:"chat_requests"`
	ChatFailures   int64    `json:"chat_failures"`
	Providers      []string `json:"providers"`
	Goroutines     int      `json:"goroutines"`
	MemoryRSSBytes uint64   `json:"memory_rss_bytes"`
	CPUPercent     float64  `json:"cpu_percent"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := statsResponse{
		UptimeSeconds: time.Since(s.startTime).Seconds(),
		ChatRequests:  s.chatRequests.Load(),
		ChatFailures:  s.chatFailures.Load(),
		Providers:     s.engine.Providers(),
		Goroutines:    runtime.NumGoroutine(),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			stats.MemoryRSSBytes = mem.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			stats.CPUPercent = cpu
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
