package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"prepmate_backend/internal/model"
	"prepmate_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
)

// QuizSessionRepository holds the in-progress quiz between generation and
// submission. One session per user; the TTL doubles as the session-expiry
// rule, and a missing key on submit surfaces as ErrQuizSessionExpired.
type QuizSessionRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewQuizSessionRepository(rdb *redis.Client, ttl time.Duration) *QuizSessionRepository {
	return &QuizSessionRepository{Redis: rdb, TTL: ttl}
}

func sessionKey(userID uint) string {
	return fmt.Sprintf("quiz_session:%d", userID)
}

func (r *QuizSessionRepository) Save(ctx context.Context, userID uint, session *model.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, sessionKey(userID), data, r.TTL).Err()
}

func (r *QuizSessionRepository) Load(ctx context.Context, userID uint) (*model.QuizSession, error) {
	data, err := r.Redis.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrQuizSessionExpired
	}
	if err != nil {
		return nil, err
	}

	var session model.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *QuizSessionRepository) Clear(ctx context.Context, userID uint) error {
	return r.Redis.Del(ctx, sessionKey(userID)).Err()
}
