package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/util"

	"github.com/go-redis/redis/v8"
)

// SessionStore 持有进行中的答题会话。会话在提交或放弃后即被清除，
// 提交之前不写关系库。
type SessionStore interface {
	Load(ctx context.Context, quizID, userID uint) (*model.AttemptSession, error)
	Save(ctx context.Context, session *model.AttemptSession, ttl time.Duration) error
	Delete(ctx context.Context, quizID, userID uint) error
}

func sessionKey(quizID, userID uint) string {
	return fmt.Sprintf("quiz_attempt:%d:%d", quizID, userID)
}

// RedisSessionStore 是生产环境实现，会话以 JSON 存储并带 TTL，
// 刷新页面后可以从这里恢复进行中的尝试。
type RedisSessionStore struct {
	Client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{Client: client}
}

func (s *RedisSessionStore) Load(ctx context.Context, quizID, userID uint) (*model.AttemptSession, error) {
	data, err := s.Client.Get(ctx, sessionKey(quizID, userID)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session model.AttemptSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, session *model.AttemptSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, sessionKey(session.QuizID, session.UserID), data, ttl).Err()
}

func (s *RedisSessionStore) Delete(ctx context.Context, quizID, userID uint) error {
	return s.Client.Del(ctx, sessionKey(quizID, userID)).Err()
}

// MemorySessionStore 用于测试和无 Redis 的本地运行
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.AttemptSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*model.AttemptSession),
	}
}

func (s *MemorySessionStore) Load(ctx context.Context, quizID, userID uint) (*model.AttemptSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionKey(quizID, userID)]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	clone := *session
	clone.SelectedAnswers = make(map[uint][]string, len(session.SelectedAnswers))
	for k, v := range session.SelectedAnswers {
		clone.SelectedAnswers[k] = append([]string(nil), v...)
	}
	return &clone, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, session *model.AttemptSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *session
	clone.SelectedAnswers = make(map[uint][]string, len(session.SelectedAnswers))
	for k, v := range session.SelectedAnswers {
		clone.SelectedAnswers[k] = append([]string(nil), v...)
	}
	s.sessions[sessionKey(session.QuizID, session.UserID)] = &clone
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, quizID, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(quizID, userID))
	return nil
}
