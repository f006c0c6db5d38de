package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

const (
	keyHistory = "history"
	keyProfile = "profile"
)

// SQLiteStore persists sessions in a local key-value table, the
// server-side analogue of the widget's host-local storage. Default
// backend for single-node deployments.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (or creates) the database at path and ensures
// the schema exists.
func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc.org/sqlite serializes writes anyway; one connection
	// avoids SQLITE_BUSY churn under concurrent sessions.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS session_kv (
			session_id TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, key)
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) get(ctx context.Context, sessionID, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_kv WHERE session_id = ? AND key = ?`,
		sessionID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.ErrStorage{Op: "sqlite get " + key, Err: err}
	}
	return value, nil
}

func (s *SQLiteStore) put(ctx context.Context, sessionID, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_kv (session_id, key, value) VALUES (?, ?, ?)
		ON CONFLICT (session_id, key)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		sessionID, key, value,
	)
	if err != nil {
		return &domain.ErrStorage{Op: "sqlite put " + key, Err: err}
	}
	return nil
}

// LoadHistory returns the persisted turns, or nil when the session is
// unknown. Corrupt rows are logged and treated as absent.
func (s *SQLiteStore) LoadHistory(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	raw, err := s.get(ctx, sessionID, keyHistory)
	if err != nil || raw == nil {
		return nil, err
	}

	var turns []domain.Turn
	if err := json.Unmarshal(raw, &turns); err != nil {
		s.logger.Warn("corrupt history record, treating as absent",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil, nil
	}
	return turns, nil
}

func (s *SQLiteStore) SaveHistory(ctx context.Context, sessionID string, turns []domain.Turn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return &domain.ErrStorage{Op: "marshal history", Err: err}
	}
	return s.put(ctx, sessionID, keyHistory, raw)
}

func (s *SQLiteStore) LoadProfile(ctx context.Context, sessionID string) (domain.UserProfile, error) {
	var profile domain.UserProfile

	raw, err := s.get(ctx, sessionID, keyProfile)
	if err != nil || raw == nil {
		return profile, err
	}

	if err := json.Unmarshal(raw, &profile); err != nil {
		s.logger.Warn("corrupt profile record, treating as absent",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return domain.UserProfile{}, nil
	}
	return profile, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, sessionID string, profile domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return &domain.ErrStorage{Op: "marshal profile", Err: err}
	}
	return s.put(ctx, sessionID, keyProfile, raw)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
