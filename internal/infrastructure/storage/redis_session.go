package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
)

const redisSessionPrefix = "quote:session:"

// redisSessionRepository sessiyalarni Redisda saqlaydi. Keys carry a TTL so
// abandoned carts disappear even if nobody writes to them again.
type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisSessionRepository ttl <= 0 stores keys without expiry.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) repository.SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl}
}

func sessionKey(phone string) string {
	return redisSessionPrefix + phone
}

func (r *redisSessionRepository) Get(ctx context.Context, phone string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	var s entity.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling session: %w", err)
	}
	if s.Step, err = entity.ParseStep(string(s.Step)); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *redisSessionRepository) Upsert(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	key := sessionKey(session.Phone)
	saved := session.Clone()
	if saved.Step == "" {
		saved.Step = entity.StepShopping
	}
	if saved.UpdatedAt.IsZero() {
		saved.UpdatedAt = time.Now()
	}

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if session.Version != 0 {
				return entity.ErrSessionConflict
			}
		case err != nil:
			return err
		default:
			var stored entity.Session
			if err := json.Unmarshal(current, &stored); err != nil {
				return fmt.Errorf("unmarshaling session: %w", err)
			}
			if stored.Version != session.Version {
				return entity.ErrSessionConflict
			}
		}

		saved.Version = session.Version + 1
		data, err := json.Marshal(saved)
		if err != nil {
			return fmt.Errorf("marshaling session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, entity.ErrSessionConflict
	}
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, phone string) (bool, error) {
	n, err := r.client.Del(ctx, sessionKey(phone)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
