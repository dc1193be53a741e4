// Package http exposes the conversation over HTTP: the multipart /chat
// endpoint drives one walk per request, plus session inspection, health
// and metrics, and a small embedded chat page.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orderdesk/refundflow/internal/logging"
	"github.com/orderdesk/refundflow/internal/workflow"
	"github.com/orderdesk/refundflow/pkg/domain"
	"github.com/orderdesk/refundflow/pkg/session"
)

// maxUploadBytes bounds the multipart form, image included.
const maxUploadBytes = 16 << 20

// Engine is the workflow core as seen from the transport.
type Engine interface {
	Walk(ctx context.Context, s *domain.ConversationState) error
}

// Server wires the engine and session manager to HTTP handlers.
type Server struct {
	engine     Engine
	sessions   *session.Manager
	uploadsDir string
	logger     *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the HTTP handler for the service.
func NewHandler(engine Engine, sessions *session.Manager, uploadsDir string, opts ...Option) http.Handler {
	s := &Server{
		engine:     engine,
		sessions:   sessions,
		uploadsDir: uploadsDir,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/", s.ui)
	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/chat", s.chat)
	r.Get("/sessions", s.listSessions)
	r.Get("/session/{sessionID}", s.getSession)
	r.Delete("/session/{sessionID}", s.deleteSession)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// turnResponse is the outbound unit for one conversation turn.
type turnResponse struct {
	SessionID      string                `json:"session_id"`
	Message        string                `json:"message"`
	SentimentScore int                   `json:"sentiment_score"`
	CurrentNode    string                `json:"current_node"`
	RefundStatus   string                `json:"refund_status"`
	NeedsInput     bool                  `json:"needs_input"`
	OrderID        string                `json:"order_id,omitempty"`
	Intent         string                `json:"intent,omitempty"`
	History        []domain.HistoryEntry `json:"conversation_history"`
}

// chat handles one inbound turn: merge the multipart fields into the
// session state and run a walk, all under the session's lock. On
// failure nothing is persisted, so the next turn retries from the last
// good state.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	sessionID := strings.TrimSpace(r.FormValue("session_id"))
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	message := strings.TrimSpace(r.FormValue("message"))
	email := strings.TrimSpace(r.FormValue("email"))

	imagePath := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imagePath, err = s.saveUpload(sessionID, header.Filename, file)
		if err != nil {
			s.logger.Error("failed to store upload", "session_id", sessionID, "err", err)
			http.Error(w, "failed to store upload", http.StatusInternalServerError)
			return
		}
	}

	state, err := s.sessions.Update(r.Context(), sessionID, func(st *domain.ConversationState) error {
		if message != "" {
			st.UserMessage = message
			// A fresh message naming a different valid order rebinds
			// the claim before the walk starts.
			if id, ok := workflow.ExtractOrderID(message); ok {
				st.BindOrder(id)
			}
		}
		if email != "" {
			st.Email = email
		}
		if imagePath != "" {
			st.ImagePath = imagePath
		}
		return s.engine.Walk(r.Context(), st)
	})
	if err != nil {
		s.logger.Error("turn failed", "session_id", sessionID, "err", err)
		http.Error(w, fmt.Sprintf("turn failed: %v", err), http.StatusInternalServerError)
		return
	}

	s.logger.Info("turn completed",
		"session_id", sessionID,
		"stage", state.CurrentStage,
		"intent", state.Intent,
		"refund_status", state.RefundStatus,
		"needs_input", state.NeedsInput,
	)

	writeJSON(w, http.StatusOK, turnResponse{
		SessionID:      state.SessionID,
		Message:        state.Response,
		SentimentScore: state.SentimentScore,
		CurrentNode:    state.CurrentStage,
		RefundStatus:   state.RefundStatus,
		NeedsInput:     state.NeedsInput,
		OrderID:        state.OrderID,
		Intent:         state.Intent,
		History:        state.History,
	})
}

// saveUpload persists an uploaded image under a unique name.
func (s *Server) saveUpload(sessionID, filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure uploads directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s", sessionID, uuid.NewString()[:8], filepath.Base(filename))
	path := filepath.Join(s.uploadsDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return path, nil
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	state, err := s.sessions.Load(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to load session: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := s.sessions.Load(r.Context(), sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to load session: %v", err), http.StatusInternalServerError)
		return
	}

	if err := s.sessions.Delete(r.Context(), sessionID); err != nil {
		http.Error(w, fmt.Sprintf("failed to delete session: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "session cleared"})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list sessions: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"active_sessions": len(ids),
		"session_ids":     ids,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"active_sessions": len(ids),
	})
}

func (s *Server) ui(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(chatHTML))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("response encode failed", "err", err)
	}
}
