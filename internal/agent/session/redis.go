package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/echo-shopbot/server/internal/agent/model"
	errx "github.com/echo-shopbot/server/internal/core/error"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// redisMeta is the persisted session envelope minus the message list, which
// lives in its own Redis list so appends stay O(1).
type redisMeta struct {
	ID          string                `json:"session_id"`
	CreatedAt   time.Time             `json:"created_at"`
	LastUpdated time.Time             `json:"last_updated"`
	Customer    model.CustomerProfile `json:"customer_info"`
}

// RedisStore keeps sessions in Redis with a TTL refreshed on every touch.
// Message ordering between racing writers is whatever order RPush observes.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) metaKey(id string) string {
	return fmt.Sprintf("session:%s:meta", id)
}

func (s *RedisStore) messagesKey(id string) string {
	return fmt.Sprintf("session:%s:messages", id)
}

func (s *RedisStore) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	now := time.Now()
	meta := redisMeta{ID: id, CreatedAt: now, LastUpdated: now}

	if err := s.writeMeta(ctx, id, &meta); err != nil {
		return "", err
	}
	logx.Info().Str("session_id", id).Msg("created new session")
	return id, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	meta, err := s.readMeta(ctx, id)
	if err != nil {
		return nil, err
	}

	msgs, err := s.readMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.Session{
		ID:          meta.ID,
		CreatedAt:   meta.CreatedAt,
		LastUpdated: meta.LastUpdated,
		Customer:    meta.Customer,
		Messages:    msgs,
	}, nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, id string, role model.Role, content string, metadata map[string]any) (*model.Message, error) {
	meta, err := s.readMeta(ctx, id)
	if err != nil {
		return nil, err
	}

	msg := model.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	b, err := json.Marshal(&msg)
	if err != nil {
		logx.Error().Err(err).Str("session_id", id).Msg("failed to marshal message")
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	key := s.messagesKey(id)
	if err := s.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push message to redis")
		return nil, errx.WrapRedis(err)
	}
	s.touch(ctx, key)

	meta.LastUpdated = msg.Timestamp
	if err := s.writeMeta(ctx, id, meta); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *RedisStore) History(ctx context.Context, id string) ([]model.Message, error) {
	if _, err := s.readMeta(ctx, id); err != nil {
		return nil, err
	}
	return s.readMessages(ctx, id)
}

func (s *RedisStore) CustomerProfile(ctx context.Context, id string) (*model.CustomerProfile, error) {
	meta, err := s.readMeta(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := meta.Customer
	return &profile, nil
}

func (s *RedisStore) UpdateCustomerProfile(ctx context.Context, id string, upd ProfileUpdate) (bool, error) {
	meta, err := s.readMeta(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	applyProfileUpdate(&meta.Customer, upd)
	meta.LastUpdated = time.Now()
	if err := s.writeMeta(ctx, id, meta); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) (bool, error) {
	n, err := s.rdb.Del(ctx, s.metaKey(id), s.messagesKey(id)).Result()
	if err != nil {
		logx.Error().Err(err).Str("session_id", id).Msg("failed to delete session from redis")
		return false, errx.WrapRedis(err)
	}
	return n > 0, nil
}

func (s *RedisStore) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.rdb.Scan(ctx, 0, "session:*:meta", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id := strings.TrimSuffix(strings.TrimPrefix(key, "session:"), ":meta")
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, errx.WrapRedis(err)
	}
	return ids, nil
}

func (s *RedisStore) readMeta(ctx context.Context, id string) (*redisMeta, error) {
	raw, err := s.rdb.Get(ctx, s.metaKey(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		logx.Error().Err(err).Str("session_id", id).Msg("failed to load session meta from redis")
		return nil, errx.WrapRedis(err)
	}

	var meta redisMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("unmarshal session meta: %w", err)
	}
	return &meta, nil
}

func (s *RedisStore) writeMeta(ctx context.Context, id string, meta *redisMeta) error {
	b, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal session meta: %w", err)
	}
	if err := s.rdb.Set(ctx, s.metaKey(id), b, s.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("session_id", id).Msg("failed to write session meta to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisStore) readMessages(ctx context.Context, id string) ([]model.Message, error) {
	key := s.messagesKey(id)
	rows, err := s.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.Message{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session history from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]model.Message, 0, len(rows))
	for i, row := range rows {
		var m model.Message
		if err := json.Unmarshal([]byte(row), &m); err != nil {
			logx.Error().Err(err).Str("session_id", id).Int("index", i).Msg("failed to unmarshal message")
			return nil, fmt.Errorf("unmarshal message at index %d: %w", i, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// touch extends the TTL on a key after a write.
func (s *RedisStore) touch(ctx context.Context, key string) {
	if s.ttl <= 0 {
		return
	}
	if ok, err := s.rdb.Expire(ctx, key, s.ttl).Result(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
	} else if !ok {
		logx.Warn().Str("key", key).Dur("ttl", s.ttl).Msg("failed to set TTL on session key")
	}
}

var _ Store = (*RedisStore)(nil)
