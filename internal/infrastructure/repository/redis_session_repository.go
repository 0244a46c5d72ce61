package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/infrastructure/codec"
)

type redisSessionRepository struct {
	client *redis.Client
	codec  codec.Codec
	key    string
}

// NewRedisSessionRepository creates a session repository backed by a Redis
// hash holding the codec name and the payload
func NewRedisSessionRepository(client *redis.Client, c codec.Codec, key string) domainRepo.SessionRepository {
	return &redisSessionRepository{client: client, codec: c, key: key}
}

func (r *redisSessionRepository) Load(ctx context.Context) (*entity.Session, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, err
	}
	payload, ok := fields["payload"]
	if !ok {
		return nil, nil
	}
	return decodeSnapshot(fields["codec"], []byte(payload))
}

func (r *redisSessionRepository) Save(ctx context.Context, session *entity.Session) error {
	payload, err := r.codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return r.client.HSet(ctx, r.key, "codec", r.codec.Name(), "payload", payload).Err()
}
