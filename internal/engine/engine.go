// Package engine implements the dialogue pipeline: slot extraction,
// intent classification, sentiment analysis and response generation
// over one SessionContext per conversation.
package engine

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
	"github.com/zentrium/assistant-engine-go/internal/port"
)

var tracer = otel.Tracer("engine")

// TurnResult is everything the widget needs to render one exchange.
type TurnResult struct {
	Reply       string
	Suggestions []string
	Intent      domain.Intent
	Confidence  float64
	Sentiment   domain.Sentiment

	// Delay is a cosmetic typing-simulation hint for the client. The
	// pipeline itself never sleeps on it.
	Delay time.Duration
}

// Engine runs the turn pipeline and persists session state best-effort
// after every mutation. It is safe for concurrent use as long as each
// SessionContext is handed to it by one goroutine at a time; the
// session manager guarantees that.
type Engine struct {
	classifier *Classifier
	extractor  *Extractor
	responder  *Responder
	store      port.SessionStore
	metrics    *observability.Metrics
	logger     *zap.Logger

	// Injected for tests.
	now    func() time.Time
	jitter func() float64
}

// NewEngine creates the engine with all dependencies injected.
func NewEngine(
	store port.SessionStore,
	responder *Responder,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		classifier: NewClassifier(),
		extractor:  NewExtractor(),
		responder:  responder,
		store:      store,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		jitter:     rand.Float64,
	}
}

// ProcessTurn runs one full exchange: extract profile facts, classify,
// generate the reply, update the context and persist. Every path ends
// in a valid reply; storage trouble is logged, never surfaced.
func (e *Engine) ProcessTurn(ctx context.Context, sc *domain.SessionContext, message string) *TurnResult {
	ctx, span := tracer.Start(ctx, "Engine.ProcessTurn")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", sc.ID))

	start := time.Now()
	defer func() {
		e.metrics.RecordRequestDuration("turn", time.Since(start))
	}()

	now := e.now()

	// --- Step 1: learn what we can about the visitor ---
	e.extractor.Extract(message, &sc.Profile)

	// --- Step 2: classify intent and sentiment ---
	cls := e.classifier.Classify(message)
	if cls.Matched {
		sc.LastTopic = cls.Intent
		sc.IntentConfidence = cls.Confidence
	}
	sc.Sentiment = e.classifier.AnalyzeSentiment(message)

	// --- Step 3: generate the reply off the sticky topic ---
	reply := e.responder.Generate(sc.LastTopic, sc.Profile, message)

	sc.History = append(sc.History,
		domain.Turn{Role: domain.RoleUser, Text: message, Timestamp: now},
		domain.Turn{Role: domain.RoleBot, Text: reply.Text, Timestamp: now},
	)
	sc.SuggestedResponses = reply.Suggestions
	sc.MessageCount++
	sc.LastInteraction = now
	sc.Reengaged = false

	e.metrics.IncrTurn(cls.Intent, sc.Sentiment)
	e.persist(ctx, sc)

	return &TurnResult{
		Reply:       reply.Text,
		Suggestions: reply.Suggestions,
		Intent:      sc.LastTopic,
		Confidence:  sc.IntentConfidence,
		Sentiment:   sc.Sentiment,
		Delay:       e.replyDelay(message),
	}
}

// SeedWelcome adds the welcome messages to a brand-new session. A
// restored session with history gets no re-greeting.
func (e *Engine) SeedWelcome(ctx context.Context, sc *domain.SessionContext) bool {
	if len(sc.History) > 0 {
		return false
	}

	now := e.now()
	for _, text := range WelcomeMessages {
		sc.History = append(sc.History, domain.Turn{Role: domain.RoleBot, Text: text, Timestamp: now})
	}
	sc.SuggestedResponses = append([]string(nil), defaultSuggestions...)
	sc.LastInteraction = now

	e.metrics.IncrSessionStarted()
	e.persist(ctx, sc)
	return true
}

// CheckIdle appends the re-engagement nudge when the session qualifies:
// widget open, at least one turn, quiet for longer than window, and not
// already nudged this idle period. Reports whether it fired.
func (e *Engine) CheckIdle(ctx context.Context, sc *domain.SessionContext, window time.Duration) bool {
	now := e.now()
	if !sc.Active || sc.Reengaged || len(sc.History) == 0 {
		return false
	}
	if now.Sub(sc.LastInteraction) <= window {
		return false
	}

	sc.History = append(sc.History, domain.Turn{Role: domain.RoleBot, Text: ReengagementReply.Text, Timestamp: now})
	sc.SuggestedResponses = append([]string(nil), ReengagementReply.Suggestions...)
	sc.Reengaged = true

	e.metrics.IncrReengagement()
	e.persist(ctx, sc)

	e.logger.Info("idle re-engagement sent", zap.String("session_id", sc.ID))
	return true
}

// SetActive records widget visibility. Opening also restarts the
// session-duration clock; closing folds the open interval into the
// accumulated duration.
func (e *Engine) SetActive(sc *domain.SessionContext, active bool) {
	now := e.now()
	if active && !sc.Active {
		sc.OpenedAt = now
		sc.LastInteraction = now
	}
	if !active && sc.Active && !sc.OpenedAt.IsZero() {
		sc.SessionDuration += now.Sub(sc.OpenedAt)
	}
	sc.Active = active
}

// persist writes history (truncated to the retention limit) and profile
// to the store. Best-effort: failures are logged and counted, the
// session carries on in memory.
func (e *Engine) persist(ctx context.Context, sc *domain.SessionContext) {
	history := sc.History
	if len(history) > domain.HistoryLimit {
		history = history[len(history)-domain.HistoryLimit:]
	}

	if err := e.store.SaveHistory(ctx, sc.ID, history); err != nil {
		e.metrics.IncrStoreError("save_history")
		e.logger.Warn("failed to save history",
			zap.String("session_id", sc.ID),
			zap.Error(err),
		)
	}
	if err := e.store.SaveProfile(ctx, sc.ID, sc.Profile); err != nil {
		e.metrics.IncrStoreError("save_profile")
		e.logger.Warn("failed to save profile",
			zap.String("session_id", sc.ID),
			zap.Error(err),
		)
	}
}

var complexTopics = []string{"pricing", "service", "technical", "artificial intelligence"}

// replyDelay estimates a natural-feeling typing delay for the reply:
// 1s base, 10ms per input character capped at +1.5s, +500ms for
// complex topics, plus up to 500ms of jitter.
func (e *Engine) replyDelay(message string) time.Duration {
	delay := 1000
	delay += min(len(message)*10, 1500)

	lower := strings.ToLower(message)
	for _, topic := range complexTopics {
		if strings.Contains(lower, topic) {
			delay += 500
			break
		}
	}

	delay += int(e.jitter() * 500)
	return time.Duration(delay) * time.Millisecond
}
