package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/engine"
	"github.com/zentrium/assistant-engine-go/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type sessionResponse struct {
	SessionID   string        `json:"sessionId"`
	Messages    []domain.Turn `json:"messages"`
	Suggestions []string      `json:"suggestions"`
	Restored    bool          `json:"restored"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply       string           `json:"reply"`
	Suggestions []string         `json:"suggestions"`
	DelayMs     int64            `json:"delayMs"`
	Intent      domain.Intent    `json:"intent"`
	Confidence  float64          `json:"confidence"`
	Sentiment   domain.Sentiment `json:"sentiment"`
}

type sessionSnapshot struct {
	SessionID    string             `json:"sessionId"`
	History      []domain.Turn      `json:"history"`
	Profile      domain.UserProfile `json:"profile"`
	LastTopic    domain.Intent      `json:"lastTopic"`
	Sentiment    domain.Sentiment   `json:"sentiment"`
	Suggestions  []string           `json:"suggestions"`
	MessageCount int                `json:"messageCount"`
	Active       bool               `json:"active"`
}

// ============================================================
// Sessions - POST /v1/sessions, GET /v1/sessions/{sessionId}
// ============================================================

// createSessionHandler also accepts an optional sessionId in the body
// so a returning visitor can resume their conversation. A resumed
// session with history gets no fresh welcome.
func createSessionHandler(eng *engine.Engine, mgr *session.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions")
		defer span.End()

		var req struct {
			SessionID string `json:"sessionId,omitempty"`
		}
		// An empty body is a valid "new session" request.
		_ = json.NewDecoder(r.Body).Decode(&req)

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		span.SetAttributes(attribute.String("session.id", sessionID))

		var resp sessionResponse
		mgr.Handle(ctx, sessionID, func(sc *domain.SessionContext) {
			seeded := eng.SeedWelcome(ctx, sc)
			resp = sessionResponse{
				SessionID:   sc.ID,
				Messages:    sc.History,
				Suggestions: sc.SuggestedResponses,
				Restored:    !seeded,
			}
		})

		writeJSON(w, http.StatusCreated, resp)
	}
}

func getSessionHandler(mgr *session.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sessions/{sessionId}")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, "sessionId is required")
			return
		}

		var snap sessionSnapshot
		mgr.Handle(ctx, sessionID, func(sc *domain.SessionContext) {
			snap = sessionSnapshot{
				SessionID:    sc.ID,
				History:      sc.History,
				Profile:      sc.Profile,
				LastTopic:    sc.LastTopic,
				Sentiment:    sc.Sentiment,
				Suggestions:  sc.SuggestedResponses,
				MessageCount: sc.MessageCount,
				Active:       sc.Active,
			}
		})

		writeJSON(w, http.StatusOK, snap)
	}
}

// ============================================================
// Widget visibility - POST /v1/sessions/{sessionId}/open|/close
// ============================================================

func setActiveHandler(eng *engine.Engine, mgr *session.Manager, active bool, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/visibility")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, "sessionId is required")
			return
		}

		mgr.Handle(ctx, sessionID, func(sc *domain.SessionContext) {
			eng.SetActive(sc, active)
		})

		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Chat - POST /v1/chat/{sessionId}
// ============================================================

func chatHandler(eng *engine.Engine, mgr *session.Manager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat/{sessionId}")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, "sessionId is required")
			return
		}
		span.SetAttributes(attribute.String("session.id", sessionID))

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Message = strings.TrimSpace(req.Message)
		if req.Message == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		var result *engine.TurnResult
		mgr.Handle(ctx, sessionID, func(sc *domain.SessionContext) {
			result = eng.ProcessTurn(ctx, sc, req.Message)
		})

		writeJSON(w, http.StatusOK, chatResponse{
			Reply:       result.Reply,
			Suggestions: result.Suggestions,
			DelayMs:     result.Delay.Milliseconds(),
			Intent:      result.Intent,
			Confidence:  result.Confidence,
			Sentiment:   result.Sentiment,
		})
	}
}
