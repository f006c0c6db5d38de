// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/engine
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

// SessionStore persists the two durable facets of a session: its
// conversation history and the extracted user profile. Implementations
// must return (zero value, nil) for a missing or unreadable record, not
// an error; only genuine I/O failures surface as errors.
type SessionStore interface {
	LoadHistory(ctx context.Context, sessionID string) ([]domain.Turn, error)
	SaveHistory(ctx context.Context, sessionID string, turns []domain.Turn) error
	LoadProfile(ctx context.Context, sessionID string) (domain.UserProfile, error)
	SaveProfile(ctx context.Context, sessionID string, profile domain.UserProfile) error
	Close() error
}

// MailTransport delivers one contact submission through one channel
// (primary relay, fallback relay). Name is used for logging, metrics
// and circuit-breaker identity.
type MailTransport interface {
	Name() string
	Send(ctx context.Context, sub *domain.ContactSubmission) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
