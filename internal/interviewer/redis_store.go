package interviewer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"saylo/internal/models"
)

const sessionKeyPrefix = "interview:session:"

// RedisStore keeps each session as a JSON string with an expiry.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (rs *RedisStore) Save(ctx context.Context, session *models.InterviewSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return rs.rdb.Set(ctx, sessionKey(session.ID), payload, rs.ttl).Err()
}

func (rs *RedisStore) Get(ctx context.Context, id string) (*models.InterviewSession, error) {
	payload, err := rs.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var session models.InterviewSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	return rs.rdb.Del(ctx, sessionKey(id)).Err()
}

func (rs *RedisStore) ListIdle(ctx context.Context, before time.Time) ([]*models.InterviewSession, error) {
	var idle []*models.InterviewSession
	iter := rs.rdb.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := iter.Val()[len(sessionKeyPrefix):]
		session, err := rs.Get(ctx, id)
		if err != nil {
			// expired between SCAN and GET
			continue
		}
		if !session.Completed && session.UpdatedAt.Before(before) {
			idle = append(idle, session)
		}
	}
	return idle, iter.Err()
}
