package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zentrium/assistant-engine-go/internal/domain"
)

// RedisStore persists sessions in Redis for multi-node deployments.
// Keys follow assistant:{sessionID}:{history|profile} and expire after
// the configured TTL, so abandoned sessions clean themselves up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore connects to the Redis at url (redis://...) and pings it
// once so misconfiguration fails at startup, not mid-conversation.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration, logger *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl, logger: logger}, nil
}

func redisKey(sessionID, key string) string {
	return fmt.Sprintf("assistant:%s:%s", sessionID, key)
}

func (s *RedisStore) get(ctx context.Context, sessionID, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.ErrStorage{Op: "redis get " + key, Err: err}
	}
	return raw, nil
}

func (s *RedisStore) put(ctx context.Context, sessionID, key string, value []byte) error {
	if err := s.client.Set(ctx, redisKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return &domain.ErrStorage{Op: "redis put " + key, Err: err}
	}
	return nil
}

func (s *RedisStore) LoadHistory(ctx context.Context, sessionID string) ([]domain.Turn, error) {
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

func (s *RedisStore) SaveHistory(ctx context.Context, sessionID string, turns []domain.Turn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return &domain.ErrStorage{Op: "marshal history", Err: err}
	}
	return s.put(ctx, sessionID, keyHistory, raw)
}

func (s *RedisStore) LoadProfile(ctx context.Context, sessionID string) (domain.UserProfile, error) {
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

func (s *RedisStore) SaveProfile(ctx context.Context, sessionID string, profile domain.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return &domain.ErrStorage{Op: "marshal profile", Err: err}
	}
	return s.put(ctx, sessionID, keyProfile, raw)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
