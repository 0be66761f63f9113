package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-jobboard-client/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps credentials in Redis so a gateway restarted on another
// host resumes the same session. Keys are namespaced per client.
type RedisStore struct {
	client     *redis.Client
	tokenKey   string
	profileKey string
}

func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	prefix := "jobboard:credentials:" + namespace
	return &RedisStore{
		client:     client,
		tokenKey:   prefix + ":token",
		profileKey: prefix + ":profile",
	}
}

func (s *RedisStore) Load(ctx context.Context) (domain.Credentials, error) {
	var creds domain.Credentials

	vals, err := s.client.MGet(ctx, s.tokenKey, s.profileKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return creds, nil
		}
		return creds, err
	}

	if token, ok := vals[0].(string); ok {
		creds.Token = token
	}
	if raw, ok := vals[1].(string); ok && raw != "" {
		var p domain.Profile
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return creds, fmt.Errorf("credential: corrupt profile: %w", err)
		}
		creds.Profile = &p
	}
	return creds, nil
}

// Save writes both keys in a MULTI/EXEC block.
func (s *RedisStore) Save(ctx context.Context, token string, profile domain.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey, token, 0)
		pipe.Set(ctx, s.profileKey, raw, 0)
		return nil
	})
	return err
}

func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.tokenKey, s.profileKey).Err()
}
