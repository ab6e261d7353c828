// Package httpapi exposes the chat pipeline and session store over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/echo-shopbot/server/internal/agent/guard"
	"github.com/echo-shopbot/server/internal/agent/model"
	"github.com/echo-shopbot/server/internal/agent/session"
	"github.com/echo-shopbot/server/internal/observability"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// Pipeline is the message-processing surface the server fronts.
// *agent.Coordinator satisfies it.
type Pipeline interface {
	ProcessMessage(ctx context.Context, message string, history []model.Message, customer model.CustomerProfile) model.Envelope
	CheckMessage(message string) guard.Result
}

type Server struct {
	pipeline Pipeline
	sessions session.Store
}

func New(pipeline Pipeline, sessions session.Store) *Server {
	return &Server{pipeline: pipeline, sessions: sessions}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"message": "Welcome to the shopping assistant API"})
	})
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"message": "pong"})
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/chat", s.handleChat)
	r.Post("/api/safety-check", s.handleSafetyCheck)
	r.Get("/api/session/{id}", s.handleGetSession)
	r.Delete("/api/session/{id}", s.handleDeleteSession)
	r.Get("/api/sessions", s.handleListSessions)
	r.Post("/api/customer/update", s.handleUpdateCustomer)

	return r
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatData struct {
	Response     string                `json:"response"`
	SessionID    string                `json:"session_id"`
	AgentUsed    string                `json:"agent_used"`
	Confidence   float64               `json:"confidence"`
	Envelope     model.Envelope        `json:"intent"`
	History      []model.Message       `json:"history"`
	CustomerInfo model.CustomerProfile `json:"customer_info"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required", "")
		return
	}

	ctx := r.Context()

	// Reuse the session when the caller's id is live, otherwise start a
	// fresh one.
	sessionID := req.SessionID
	if sessionID != "" {
		if _, err := s.sessions.Get(ctx, sessionID); err != nil {
			logx.Warn().Str("session_id", sessionID).Msg("unknown session id, creating a new session")
			sessionID = ""
		}
	}
	if sessionID == "" {
		id, err := s.sessions.Create(ctx)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to create session", err.Error())
			return
		}
		sessionID = id
	}

	// The pipeline sees the conversation as it stood before this message,
	// so a first contact still reads as a fresh session.
	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load session history", err.Error())
		return
	}
	profile, err := s.sessions.CustomerProfile(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load customer profile", err.Error())
		return
	}

	if _, err := s.sessions.AppendMessage(ctx, sessionID, model.RoleUser, req.Message, nil); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record message", err.Error())
		return
	}

	env := s.pipeline.ProcessMessage(ctx, req.Message, history, *profile)

	meta := map[string]any{
		"agent_used": env.AgentUsed,
		"confidence": env.Confidence,
	}
	if _, err := s.sessions.AppendMessage(ctx, sessionID, model.RoleAssistant, env.Response, meta); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to record reply", err.Error())
		return
	}

	finalHistory, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load session history", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Message processed successfully",
		Data: chatData{
			Response:     env.Response,
			SessionID:    sessionID,
			AgentUsed:    env.AgentUsed,
			Confidence:   env.Confidence,
			Envelope:     env,
			History:      finalHistory,
			CustomerInfo: env.CustomerInfo,
		},
	})
}

type safetyCheckRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleSafetyCheck(w http.ResponseWriter, r *http.Request) {
	var req safetyCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Safety check completed successfully",
		Data:    s.pipeline.CheckMessage(req.Message),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, err := s.sessions.History(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respondError(w, http.StatusNotFound, "session not found", id)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load session", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.sessions.Delete(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete session", err.Error())
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "session not found", id)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Session deleted successfully"})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.ListIDs(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list sessions", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

type customerUpdateRequest struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.SessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required", "")
		return
	}

	ok, err := s.sessions.UpdateCustomerProfile(r.Context(), req.SessionID, session.ProfileUpdate{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update customer info", err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "session not found", req.SessionID)
		return
	}
	respondJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Customer information updated successfully"})
}
