package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// RefreshTokenStore keeps issued refresh tokens in Redis with a TTL.
// Two keys per user: token → user id for lookup during refresh, and
// user id → token so logout can revoke without knowing the token.
type RefreshTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRefreshTokenStore wraps the given Redis client. ttl bounds a refresh
// token's lifetime; a non-positive value defaults to 7 days.
func NewRefreshTokenStore(client *redis.Client, ttl time.Duration) *RefreshTokenStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &RefreshTokenStore{client: client, ttl: ttl}
}

// Save stores a refresh token for the user, replacing any previous one:
// a user holds at most one live refresh token.
func (s *RefreshTokenStore) Save(ctx context.Context, token string, userID int64) error {
	if prev, err := s.client.GetDel(ctx, s.userKey(userID)).Result(); err == nil && prev != "" {
		_ = s.client.Del(ctx, s.tokenKey(prev)).Err()
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.tokenKey(token), strconv.FormatInt(userID, 10), s.ttl)
	pipe.Set(ctx, s.userKey(userID), token, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// UserID resolves a refresh token to its account. Unknown or expired
// tokens yield domain.ErrInvalidToken.
func (s *RefreshTokenStore) UserID(ctx context.Context, token string) (int64, error) {
	val, err := s.client.Get(ctx, s.tokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrInvalidToken
		}
		return 0, fmt.Errorf("lookup refresh token: %w", err)
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}
	return id, nil
}

// Revoke deletes the user's refresh token, if any.
func (s *RefreshTokenStore) Revoke(ctx context.Context, userID int64) error {
	token, err := s.client.GetDel(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if token != "" {
		if err := s.client.Del(ctx, s.tokenKey(token)).Err(); err != nil {
			return fmt.Errorf("revoke refresh token: %w", err)
		}
	}
	return nil
}

func (s *RefreshTokenStore) tokenKey(token string) string {
	return "refresh:token:" + token
}

func (s *RefreshTokenStore) userKey(userID int64) string {
	return "refresh:user:" + strconv.FormatInt(userID, 10)
}
