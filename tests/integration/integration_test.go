package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/engine"
	"github.com/zentrium/assistant-engine-go/internal/handler"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
	"github.com/zentrium/assistant-engine-go/internal/infra/resilience"
	"github.com/zentrium/assistant-engine-go/internal/port"
	"github.com/zentrium/assistant-engine-go/internal/relay"
	"github.com/zentrium/assistant-engine-go/internal/session"
)

type harness struct {
	router http.Handler
}

// newHarness wires the whole service over a real SQLite store and a
// mock mail endpoint, the same shape main() builds.
func newHarness(t *testing.T, mailStatus int) *harness {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	store, err := session.NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), logger)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mail := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(mailStatus)
	}))
	t.Cleanup(mail.Close)

	responder := engine.NewResponder(domain.DefaultKnowledgeBase(), func(n int) int { return 0 })
	eng := engine.NewEngine(store, responder, metrics, logger)
	mgr := session.NewManager(store, time.Minute, metrics, logger)

	client := &http.Client{Timeout: 5 * time.Second}
	relaySvc := relay.NewService(
		[]port.MailTransport{
			relay.NewEmailJSTransport(client, mail.URL, "svc", "tpl", "to@example.com", "cc@example.com"),
			relay.NewFormSubmitTransport(client, mail.URL, "cc@example.com"),
		},
		resilience.Config{MaxRetries: 0, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10},
		[]string{"to@example.com"},
		metrics,
		logger,
	)

	return &harness{router: handler.NewRouter(eng, mgr, relaySvc, metrics, logger)}
}

func (h *harness) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader = bytes.NewReader(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

// TestIntegration_ConversationFlow walks a visitor through a full
// conversation: welcome, a few turns that build up the profile and
// topic, then a snapshot check and a resume from the durable store.
func TestIntegration_ConversationFlow(t *testing.T) {
	h := newHarness(t, http.StatusOK)

	code, created := h.do(t, http.MethodPost, "/v1/sessions", nil)
	if code != http.StatusCreated {
		t.Fatalf("create session returned %d", code)
	}
	sessionID := created["sessionId"].(string)
	if messages, _ := created["messages"].([]any); len(messages) != 3 {
		t.Fatalf("expected 3 welcome messages, got %d", len(messages))
	}

	code, _ = h.do(t, http.MethodPost, "/v1/sessions/"+sessionID+"/open", nil)
	if code != http.StatusNoContent {
		t.Fatalf("open returned %d", code)
	}

	// Turn 1: greeting plus a name for the extractor.
	code, reply := h.do(t, http.MethodPost, "/v1/chat/"+sessionID, map[string]string{
		"message": "hello, my name is alice",
	})
	if code != http.StatusOK {
		t.Fatalf("chat returned %d", code)
	}
	if reply["intent"] != "greeting" {
		t.Errorf("expected greeting intent, got %v", reply["intent"])
	}

	// Turn 2: asks about a service, setting the sticky topic.
	_, reply = h.do(t, http.MethodPost, "/v1/chat/"+sessionID, map[string]string{
		"message": "what does workflow automation cost?",
	})
	if reply["intent"] != "pricing" {
		t.Errorf("expected pricing intent, got %v", reply["intent"])
	}
	if text, _ := reply["reply"].(string); !strings.Contains(text, "Workflow Automation") {
		t.Errorf("expected service named in reply, got %q", text)
	}

	// Turn 3: no intent keywords, the topic must stick.
	_, reply = h.do(t, http.MethodPost, "/v1/chat/"+sessionID, map[string]string{
		"message": "hmm, interesting",
	})
	if reply["intent"] != "pricing" {
		t.Errorf("expected topic to stick, got %v", reply["intent"])
	}

	// Snapshot reflects everything learned so far.
	code, snap := h.do(t, http.MethodGet, "/v1/sessions/"+sessionID, nil)
	if code != http.StatusOK {
		t.Fatalf("snapshot returned %d", code)
	}
	profile, _ := snap["profile"].(map[string]any)
	if profile["name"] != "Alice" {
		t.Errorf("expected name Alice in profile, got %v", profile)
	}
	if profile["interest"] != "Workflow Automation" {
		t.Errorf("expected interest recorded, got %v", profile)
	}
	if snap["messageCount"] != float64(3) {
		t.Errorf("expected 3 user messages, got %v", snap["messageCount"])
	}
	if snap["lastTopic"] != "pricing" {
		t.Errorf("expected sticky topic pricing, got %v", snap["lastTopic"])
	}

	// Resuming with the same ID restores from the store, no re-greeting.
	code, resumed := h.do(t, http.MethodPost, "/v1/sessions", map[string]string{"sessionId": sessionID})
	if code != http.StatusCreated {
		t.Fatalf("resume returned %d", code)
	}
	if resumed["restored"] != true {
		t.Error("expected resumed session to be marked restored")
	}
}

// TestIntegration_ContactRelay exercises both relay outcomes through
// the HTTP surface.
func TestIntegration_ContactRelay(t *testing.T) {
	sub := map[string]string{
		"name":    "Alice",
		"email":   "alice@example.com",
		"message": "Please send me a quote",
	}

	h := newHarness(t, http.StatusOK)
	code, result := h.do(t, http.MethodPost, "/v1/contact", sub)
	if code != http.StatusOK || result["delivered"] != true {
		t.Errorf("expected delivery, got %d %v", code, result)
	}
	if result["transport"] != "primary" {
		t.Errorf("expected primary transport, got %v", result["transport"])
	}

	down := newHarness(t, http.StatusBadGateway)
	code, result = down.do(t, http.MethodPost, "/v1/contact", sub)
	if code != http.StatusOK || result["delivered"] != false {
		t.Errorf("expected accepted fallback, got %d %v", code, result)
	}
	if link, _ := result["mailtoLink"].(string); !strings.HasPrefix(link, "mailto:") {
		t.Errorf("expected mailto fallback, got %v", result["mailtoLink"])
	}
}

// TestIntegration_SurvivesProcessRestart simulates a restart by
// building a second stack over the same database file.
func TestIntegration_SurvivesProcessRestart(t *testing.T) {
	logger := zap.NewNop()
	dbPath := filepath.Join(t.TempDir(), "sessions.db")

	buildRouter := func(t *testing.T) http.Handler {
		metrics := observability.NewMetrics()
		store, err := session.NewSQLiteStore(dbPath, logger)
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		t.Cleanup(func() { store.Close() })

		responder := engine.NewResponder(domain.DefaultKnowledgeBase(), func(n int) int { return 0 })
		eng := engine.NewEngine(store, responder, metrics, logger)
		mgr := session.NewManager(store, time.Minute, metrics, logger)
		relaySvc := relay.NewService(nil,
			resilience.Config{MaxConcurrency: 1}, nil, metrics, logger)
		return handler.NewRouter(eng, mgr, relaySvc, metrics, logger)
	}

	first := &harness{router: buildRouter(t)}
	_, created := first.do(t, http.MethodPost, "/v1/sessions", nil)
	sessionID := created["sessionId"].(string)
	first.do(t, http.MethodPost, "/v1/chat/"+sessionID, map[string]string{
		"message": "hi, my name is bob, i work at initech",
	})

	second := &harness{router: buildRouter(t)}
	code, snap := second.do(t, http.MethodGet, "/v1/sessions/"+sessionID, nil)
	if code != http.StatusOK {
		t.Fatalf("snapshot after restart returned %d", code)
	}
	profile, _ := snap["profile"].(map[string]any)
	if profile["name"] != "Bob" || profile["company"] != "initech" {
		t.Errorf("expected restored profile, got %v", profile)
	}
	if history, _ := snap["history"].([]any); len(history) != 5 {
		t.Errorf("expected persisted history, got %d turns", len(history))
	}
}
