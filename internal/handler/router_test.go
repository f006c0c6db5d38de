package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/engine"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
	"github.com/zentrium/assistant-engine-go/internal/infra/resilience"
	"github.com/zentrium/assistant-engine-go/internal/port"
	"github.com/zentrium/assistant-engine-go/internal/relay"
	"github.com/zentrium/assistant-engine-go/internal/session"
)

// newTestRouter wires the full stack over an in-memory store. mailURL
// points both relay transports at the given test server; pass "" for a
// relay that always falls back to mailto.
func newTestRouter(t *testing.T, mailURL string) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := session.NewMemoryStore()

	responder := engine.NewResponder(domain.DefaultKnowledgeBase(), func(n int) int { return 0 })
	eng := engine.NewEngine(store, responder, metrics, logger)
	mgr := session.NewManager(store, time.Minute, metrics, logger)

	if mailURL == "" {
		mailURL = "http://127.0.0.1:1" // nothing listens here
	}
	client := &http.Client{Timeout: time.Second}
	relaySvc := relay.NewService(
		[]port.MailTransport{
			relay.NewEmailJSTransport(client, mailURL, "svc", "tpl", "to@example.com", "cc@example.com"),
			relay.NewFormSubmitTransport(client, mailURL, "cc@example.com"),
		},
		resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxConcurrency: 2},
		[]string{"to@example.com"},
		metrics,
		logger,
	)

	return NewRouter(eng, mgr, relaySvc, metrics, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t, "")

	if rec := doJSON(t, router, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz returned %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("readyz returned %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/ping", nil); rec.Code != http.StatusOK {
		t.Errorf("ping returned %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK {
		t.Errorf("metrics returned %d", rec.Code)
	}
}

func TestCreateSession(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	sessionID, _ := body["sessionId"].(string)
	if sessionID == "" {
		t.Fatal("expected a session id")
	}
	messages, _ := body["messages"].([]any)
	if len(messages) != 3 {
		t.Errorf("expected 3 welcome messages, got %d", len(messages))
	}
	suggestions, _ := body["suggestions"].([]any)
	if len(suggestions) != 3 {
		t.Errorf("expected 3 starter suggestions, got %v", suggestions)
	}
	if body["restored"] != false {
		t.Error("fresh session must not be marked restored")
	}

	// Reopening the same session resumes instead of re-greeting.
	rec = doJSON(t, router, http.MethodPost, "/v1/sessions", map[string]string{"sessionId": sessionID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 on resume, got %d", rec.Code)
	}
	body = decodeBody(t, rec)
	if body["restored"] != true {
		t.Error("resumed session should be marked restored")
	}
	if messages, _ := body["messages"].([]any); len(messages) != 3 {
		t.Errorf("resume must not duplicate the welcome, got %d messages", len(messages))
	}
}

func TestChatFlow(t *testing.T) {
	router := newTestRouter(t, "")

	created := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/sessions", nil))
	sessionID := created["sessionId"].(string)

	rec := doJSON(t, router, http.MethodPost, "/v1/chat/"+sessionID, map[string]string{
		"message": "hi, my name is alice",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	reply, _ := body["reply"].(string)
	if !strings.HasPrefix(reply, "Hi Alice! ") {
		t.Errorf("expected personalized reply, got %q", reply)
	}
	if body["intent"] != "greeting" {
		t.Errorf("expected greeting intent, got %v", body["intent"])
	}
	if delay, _ := body["delayMs"].(float64); delay < 1000 {
		t.Errorf("expected a typing delay, got %v", delay)
	}

	// The snapshot reflects the turn.
	snap := decodeBody(t, doJSON(t, router, http.MethodGet, "/v1/sessions/"+sessionID, nil))
	if snap["messageCount"] != float64(1) {
		t.Errorf("expected message count 1, got %v", snap["messageCount"])
	}
	profile, _ := snap["profile"].(map[string]any)
	if profile["name"] != "Alice" {
		t.Errorf("expected extracted name in snapshot, got %v", profile)
	}
	history, _ := snap["history"].([]any)
	if len(history) != 5 {
		t.Errorf("expected welcome + exchange in history, got %d", len(history))
	}
}

func TestChat_EmptyMessageRejected(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/v1/chat/s1", map[string]string{"message": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSessionVisibility(t *testing.T) {
	router := newTestRouter(t, "")

	created := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/sessions", nil))
	sessionID := created["sessionId"].(string)

	if rec := doJSON(t, router, http.MethodPost, "/v1/sessions/"+sessionID+"/open", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("open returned %d", rec.Code)
	}
	snap := decodeBody(t, doJSON(t, router, http.MethodGet, "/v1/sessions/"+sessionID, nil))
	if snap["active"] != true {
		t.Error("expected session active after open")
	}

	if rec := doJSON(t, router, http.MethodPost, "/v1/sessions/"+sessionID+"/close", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("close returned %d", rec.Code)
	}
	snap = decodeBody(t, doJSON(t, router, http.MethodGet, "/v1/sessions/"+sessionID, nil))
	if snap["active"] != false {
		t.Error("expected session inactive after close")
	}
}

func TestContact_Validation(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/v1/contact", map[string]string{
		"name":  "Alice",
		"email": "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestContact_Delivered(t *testing.T) {
	mail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer mail.Close()

	router := newTestRouter(t, mail.URL)

	rec := doJSON(t, router, http.MethodPost, "/v1/contact", map[string]string{
		"name":    "Alice",
		"email":   "alice@example.com",
		"message": "I'd like a demo",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["delivered"] != true {
		t.Errorf("expected delivery, got %v", body)
	}
}

func TestContact_MailtoFallbackStillAccepted(t *testing.T) {
	router := newTestRouter(t, "")

	rec := doJSON(t, router, http.MethodPost, "/v1/contact", map[string]string{
		"name":    "Alice",
		"email":   "alice@example.com",
		"message": "hello",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with mailto fallback, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["delivered"] != false {
		t.Errorf("expected delivery failure, got %v", body)
	}
	link, _ := body["mailtoLink"].(string)
	if !strings.HasPrefix(link, "mailto:") {
		t.Errorf("expected mailto link, got %q", link)
	}
}

func TestEngineMetricsSnapshot(t *testing.T) {
	router := newTestRouter(t, "")

	created := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/sessions", nil))
	sessionID := created["sessionId"].(string)
	doJSON(t, router, http.MethodPost, "/v1/chat/"+sessionID, map[string]string{"message": "hello"})

	rec := doJSON(t, router, http.MethodGet, "/v1/metrics/engine", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["totalTurns"] != float64(1) {
		t.Errorf("expected 1 turn recorded, got %v", body["totalTurns"])
	}
	if body["sessionsStarted"] != float64(1) {
		t.Errorf("expected 1 session started, got %v", body["sessionsStarted"])
	}
}
