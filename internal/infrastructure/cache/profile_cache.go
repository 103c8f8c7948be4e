package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/niklvrr/mentorq/internal/domain"
	"go.uber.org/zap"
)

const keyPrefix = "mentorq:profile:"

// Gateway источник профилей, который кешируется
type Gateway interface {
	ResolveProfile(ctx context.Context, cred domain.Credential) (domain.Profile, error)
	CreateDMLink(ctx context.Context, cred domain.Credential, otherEmail string) (string, error)
}

// ProfileCache кеширует профили LCS в Redis. Ошибки Redis не ломают запрос,
// в этом случае профиль просто читается из LCS.
type ProfileCache struct {
	next   Gateway
	client redis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

func NewProfileCache(next Gateway, client redis.Cmdable, ttl time.Duration, log *zap.Logger) *ProfileCache {
	return &ProfileCache{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// NewRedisClient принимает redis:// URL или просто host:port
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts := &redis.Options{Addr: url}
	if strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, err
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func (c *ProfileCache) ResolveProfile(ctx context.Context, cred domain.Credential) (domain.Profile, error) {
	key := profileKey(cred)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var profile domain.Profile
		if err := json.Unmarshal(raw, &profile); err == nil {
			c.log.Debug("profile cache hit", zap.String("email", cred.Email))
			return profile, nil
		}
		c.log.Warn("corrupted profile cache entry", zap.String("email", cred.Email))
	case errors.Is(err, redis.Nil):
		c.log.Debug("profile cache miss", zap.String("email", cred.Email))
	default:
		c.log.Warn("profile cache read failed", zap.Error(err))
	}

	profile, err := c.next.ResolveProfile(ctx, cred)
	if err != nil {
		return domain.Profile{}, err
	}

	if raw, err := json.Marshal(profile); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn("profile cache write failed", zap.Error(err))
		}
	}
	return profile, nil
}

func (c *ProfileCache) CreateDMLink(ctx context.Context, cred domain.Credential, otherEmail string) (string, error) {
	return c.next.CreateDMLink(ctx, cred, otherEmail)
}

// токен LCS не хранится в ключе в открытом виде
func profileKey(cred domain.Credential) string {
	sum := sha256.Sum256([]byte(cred.Email + "\x00" + cred.Token))
	return keyPrefix + hex.EncodeToString(sum[:])
}
