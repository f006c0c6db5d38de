package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

// Metrics holds all Prometheus metrics for the assistant engine.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	turnsTotal      *prometheus.CounterVec
	sessionsStarted prometheus.Counter
	reengagements   prometheus.Counter
	storeErrors     *prometheus.CounterVec
	relayAttempts   *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assistant_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_turns_total",
				Help: "Total conversation turns by detected intent and sentiment.",
			},
			[]string{"intent", "sentiment"},
		),
		sessionsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "assistant_sessions_started_total",
				Help: "Total sessions created.",
			},
		),
		reengagements: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "assistant_reengagements_total",
				Help: "Total idle re-engagement nudges sent.",
			},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_store_errors_total",
				Help: "Total session store failures by operation.",
			},
			[]string{"op"},
		),
		relayAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_relay_attempts_total",
				Help: "Contact relay delivery attempts by transport and outcome.",
			},
			[]string{"transport", "outcome"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrTurn counts one processed turn with its classification labels.
func (m *Metrics) IncrTurn(intent domain.Intent, sentiment domain.Sentiment) {
	m.turnsTotal.WithLabelValues(intent.String(), string(sentiment)).Inc()
}

// IncrSessionStarted increments the session counter.
func (m *Metrics) IncrSessionStarted() {
	m.sessionsStarted.Inc()
}

// IncrReengagement increments the idle-nudge counter.
func (m *Metrics) IncrReengagement() {
	m.reengagements.Inc()
}

// IncrStoreError increments the store failure counter for an operation.
func (m *Metrics) IncrStoreError(op string) {
	m.storeErrors.WithLabelValues(op).Inc()
}

// IncrRelayAttempt records one delivery attempt outcome ("delivered",
// "failed") for a transport.
func (m *Metrics) IncrRelayAttempt(transport, outcome string) {
	m.relayAttempts.WithLabelValues(transport, outcome).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

var allIntents = []domain.Intent{
	domain.IntentNone, domain.IntentGreeting, domain.IntentFarewell,
	domain.IntentThanks, domain.IntentServices, domain.IntentPricing,
	domain.IntentContact, domain.IntentBooking, domain.IntentHelp,
	domain.IntentCompany,
}

var allSentiments = []domain.Sentiment{
	domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral,
}

// GetEngineSnapshot returns a snapshot of engine metrics suitable for
// the GET /v1/metrics/engine endpoint.
func (m *Metrics) GetEngineSnapshot() *domain.EngineStats {
	byIntent := make(map[string]int64, len(allIntents))
	var total float64
	for _, intent := range allIntents {
		var sum float64
		for _, sentiment := range allSentiments {
			sum += getCounterValue(m.turnsTotal, intent.String(), string(sentiment))
		}
		if sum > 0 {
			byIntent[intent.String()] = int64(sum)
		}
		total += sum
	}

	var storeErrs float64
	for _, op := range []string{"load_history", "save_history", "load_profile", "save_profile"} {
		storeErrs += getCounterValue(m.storeErrors, op)
	}

	var delivered, failed float64
	for _, transport := range []string{"primary", "fallback"} {
		delivered += getCounterValue(m.relayAttempts, transport, "delivered")
		failed += getCounterValue(m.relayAttempts, transport, "failed")
	}

	hits := getCounterValue(m.cacheHits, "session")
	misses := getCounterValue(m.cacheMisses, "session")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.EngineStats{
		TotalTurns:      int64(total),
		TurnsByIntent:   byIntent,
		SessionsStarted: int64(counterValue(m.sessionsStarted)),
		Reengagements:   int64(counterValue(m.reengagements)),
		RelayDelivered:  int64(delivered),
		RelayFailed:     int64(failed),
		StoreErrors:     int64(storeErrs),
		CacheHitRate:    hitRate,
		Period:          "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec
// for the given label values.
func getCounterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	return counterValue(counter.(prometheus.Metric))
}

func counterValue(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
