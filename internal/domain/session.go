package domain

import "time"

// HistoryLimit is the maximum number of turns persisted per session.
// Older turns are dropped on each save, mirroring the size cap of the
// host-local store.
const HistoryLimit = 20

// Role identifies the author of a turn.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Turn is one message in a conversation. Immutable once created.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// UserProfile holds the facts the slot extractor has learned about the
// visitor. Fields are only ever set, never cleared; a later match for a
// field overwrites the earlier value.
type UserProfile struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Company  string `json:"company,omitempty"`
	Location string `json:"location,omitempty"`
	Interest string `json:"interest,omitempty"`
}

// Empty reports whether no field has been extracted yet.
func (p UserProfile) Empty() bool {
	return p == UserProfile{}
}

// SessionContext is the single piece of mutable state for one
// conversation. One goroutine at a time operates on it; the session
// manager enforces that with a per-session lock.
type SessionContext struct {
	ID string

	// History is append-only; the engine truncates to HistoryLimit
	// entries when persisting, never in memory mid-session.
	History []Turn

	// LastTopic is sticky: it changes only when the classifier finds a
	// new intent, and otherwise keeps its previous value across turns.
	LastTopic        Intent
	IntentConfidence float64

	// Sentiment is recomputed every turn, never sticky.
	Sentiment Sentiment

	Profile UserProfile

	// SuggestedResponses is fully replaced each turn by whichever
	// response branch ran; empty when the branch offered no chips.
	SuggestedResponses []string

	MessageCount    int
	SessionDuration time.Duration
	LastInteraction time.Time

	// Active mirrors widget visibility on the host page. The idle
	// monitor skips sessions that are not active.
	Active   bool
	OpenedAt time.Time

	// Reengaged is set after the idle monitor has nudged the visitor,
	// so one idle period produces at most one nudge. Cleared on the
	// next user turn.
	Reengaged bool
}

// NewSessionContext creates a fresh context for the given session ID.
func NewSessionContext(id string, now time.Time) *SessionContext {
	return &SessionContext{
		ID:                 id,
		Sentiment:          SentimentNeutral,
		SuggestedResponses: []string{},
		LastInteraction:    now,
	}
}
