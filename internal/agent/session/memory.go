package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/echo-shopbot/server/internal/agent/model"
	logx "github.com/echo-shopbot/server/pkg/logger"
)

// MemoryStore keeps sessions in process memory. One RWMutex guards the
// registry and every session's mutable state, so concurrent appends to the
// same session interleave atomically; ordering between racing requests is
// whoever locks first.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	logx.Info().Msg("session store initialised with 0 sessions")
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context) (string, error) {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	s.sessions[id] = &model.Session{
		ID:          id,
		CreatedAt:   now,
		LastUpdated: now,
	}
	total := len(s.sessions)
	s.mu.Unlock()

	logx.Info().Str("session_id", id).Int("total_sessions", total).Msg("created new session")
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot(sess), nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, id string, role model.Role, content string, metadata map[string]any) (*model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		logx.Warn().Str("session_id", id).Msg("cannot append message: session not found")
		return nil, ErrNotFound
	}

	msg := model.Message{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
		Metadata:  metadata,
	}
	sess.Messages = append(sess.Messages, msg)
	sess.LastUpdated = msg.Timestamp

	return &msg, nil
}

func (s *MemoryStore) History(_ context.Context, id string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	msgs := make([]model.Message, len(sess.Messages))
	copy(msgs, sess.Messages)
	return msgs, nil
}

func (s *MemoryStore) CustomerProfile(_ context.Context, id string) (*model.CustomerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	profile := sess.Customer
	return &profile, nil
}

func (s *MemoryStore) UpdateCustomerProfile(_ context.Context, id string, upd ProfileUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false, nil
	}

	applyProfileUpdate(&sess.Customer, upd)
	sess.LastUpdated = s.now()
	logx.Debug().Str("session_id", id).Msg("updated customer profile")
	return true, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		logx.Warn().Str("session_id", id).Msg("cannot delete: session not found")
		return false, nil
	}
	delete(s.sessions, id)
	logx.Info().Str("session_id", id).Int("remaining_sessions", len(s.sessions)).Msg("deleted session")
	return true, nil
}

func (s *MemoryStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// EvictIdle drops sessions whose last update is older than maxIdle and
// returns how many were removed. A maxIdle of zero disables eviction.
func (s *MemoryStore) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastUpdated.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		logx.Info().Int("evicted", evicted).Int("remaining_sessions", len(s.sessions)).Msg("evicted idle sessions")
	}
	return evicted
}

// StartJanitor runs EvictIdle on the given interval until ctx is cancelled.
func (s *MemoryStore) StartJanitor(ctx context.Context, maxIdle, interval time.Duration) {
	if maxIdle <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.EvictIdle(maxIdle)
			}
		}
	}()
}

func snapshot(sess *model.Session) *model.Session {
	out := &model.Session{
		ID:          sess.ID,
		CreatedAt:   sess.CreatedAt,
		LastUpdated: sess.LastUpdated,
		Customer:    sess.Customer,
		Messages:    make([]model.Message, len(sess.Messages)),
	}
	copy(out.Messages, sess.Messages)
	return out
}

var _ Store = (*MemoryStore)(nil)
