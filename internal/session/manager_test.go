package session

import (
	"context"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
	"github.com/zentrium/assistant-engine-go/internal/infra/observability"
)

func newTestManager(store *MemoryStore) *Manager {
	return NewManager(store, time.Minute, observability.NewMetrics(), zap.NewNop())
}

func TestHandle_NewSessionStartsFresh(t *testing.T) {
	m := newTestManager(NewMemoryStore())

	m.Handle(context.Background(), "s1", func(sc *domain.SessionContext) {
		if sc.ID != "s1" {
			t.Errorf("expected session id s1, got %q", sc.ID)
		}
		if len(sc.History) != 0 || sc.MessageCount != 0 {
			t.Errorf("expected empty session, got %d turns, count %d", len(sc.History), sc.MessageCount)
		}
	})
}

func TestHandle_KeepsContextLive(t *testing.T) {
	m := newTestManager(NewMemoryStore())

	m.Handle(context.Background(), "s1", func(sc *domain.SessionContext) {
		sc.LastTopic = domain.IntentPricing
	})
	m.Handle(context.Background(), "s1", func(sc *domain.SessionContext) {
		if sc.LastTopic != domain.IntentPricing {
			t.Errorf("expected cached context, got topic %s", sc.LastTopic)
		}
	})
}

func TestHandle_RestoresFromStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store.SaveHistory(ctx, "s1", []domain.Turn{
		{Role: domain.RoleBot, Text: "Hello!", Timestamp: ts},
		{Role: domain.RoleUser, Text: "hi", Timestamp: ts},
		{Role: domain.RoleBot, Text: "How can I help?", Timestamp: ts},
		{Role: domain.RoleUser, Text: "pricing please", Timestamp: ts},
	})
	store.SaveProfile(ctx, "s1", domain.UserProfile{Name: "Alice"})

	m := newTestManager(store)
	m.Handle(ctx, "s1", func(sc *domain.SessionContext) {
		if len(sc.History) != 4 {
			t.Errorf("expected restored history, got %d turns", len(sc.History))
		}
		if sc.MessageCount != 2 {
			t.Errorf("message count should count user turns, got %d", sc.MessageCount)
		}
		if sc.Profile.Name != "Alice" {
			t.Errorf("expected restored profile, got %+v", sc.Profile)
		}
	})
}

func TestEach_ListsLiveSessions(t *testing.T) {
	m := newTestManager(NewMemoryStore())

	m.Handle(context.Background(), "a", func(*domain.SessionContext) {})
	m.Handle(context.Background(), "b", func(*domain.SessionContext) {})

	var ids []string
	m.Each(func(id string) { ids = append(ids, id) })
	sort.Strings(ids)

	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected live sessions [a b], got %v", ids)
	}
}

func TestHandle_RestoreSurvivesStoreFailure(t *testing.T) {
	m := NewManager(brokenStore{}, time.Minute, observability.NewMetrics(), zap.NewNop())

	m.Handle(context.Background(), "s1", func(sc *domain.SessionContext) {
		if sc == nil || sc.ID != "s1" {
			t.Fatalf("expected fresh session despite store failure, got %+v", sc)
		}
	})
}

type brokenStore struct{}

func (brokenStore) LoadHistory(context.Context, string) ([]domain.Turn, error) {
	return nil, &domain.ErrStorage{Op: "load", Err: context.DeadlineExceeded}
}
func (brokenStore) SaveHistory(context.Context, string, []domain.Turn) error {
	return &domain.ErrStorage{Op: "save", Err: context.DeadlineExceeded}
}
func (brokenStore) LoadProfile(context.Context, string) (domain.UserProfile, error) {
	return domain.UserProfile{}, &domain.ErrStorage{Op: "load", Err: context.DeadlineExceeded}
}
func (brokenStore) SaveProfile(context.Context, string, domain.UserProfile) error {
	return &domain.ErrStorage{Op: "save", Err: context.DeadlineExceeded}
}
func (brokenStore) Close() error { return nil }
