package token

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RevokedTokenCache remembers the IDs of signed-out session tokens until they
// would have expired anyway.
type RevokedTokenCache interface {
	Add(jti string, exp time.Time) error
	IsRevoked(jti string) bool
	Cleanup() // Remove expired entries
}

var (
	_ RevokedTokenCache = (*InMemoryRevokedTokenCache)(nil)
	_ RevokedTokenCache = (*RedisRevokedTokenCache)(nil)
)

// InMemoryRevokedTokenCache only covers tokens issued by this process.
type InMemoryRevokedTokenCache struct {
	mu      sync.RWMutex
	expires map[string]time.Time
	nowFunc func() time.Time
}

// NewInMemoryRevokedTokenCache takes an optional clock, time.Now otherwise.
func NewInMemoryRevokedTokenCache(nowFunc ...func() time.Time) *InMemoryRevokedTokenCache {
	c := &InMemoryRevokedTokenCache{
		expires: make(map[string]time.Time),
		nowFunc: time.Now,
	}
	if len(nowFunc) > 0 && nowFunc[0] != nil {
		c.nowFunc = nowFunc[0]
	}
	return c
}

func (c *InMemoryRevokedTokenCache) Add(jti string, exp time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !exp.After(c.nowFunc()) {
		return nil // already unusable
	}
	c.expires[jti] = exp
	return nil
}

func (c *InMemoryRevokedTokenCache) IsRevoked(jti string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	exp, ok := c.expires[jti]
	return ok && exp.After(c.nowFunc())
}

func (c *InMemoryRevokedTokenCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.nowFunc()
	for jti, exp := range c.expires {
		if !exp.After(now) {
			delete(c.expires, jti)
		}
	}
}

const redisRevocationTimeout = 2 * time.Second

// RedisRevokedTokenCache shares revocations between server replicas. Entries
// carry the token's own expiry so Redis drops them without a sweep.
type RedisRevokedTokenCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRevokedTokenCache(client redis.UniversalClient, prefix string) *RedisRevokedTokenCache {
	return &RedisRevokedTokenCache{client: client, prefix: prefix}
}

func (c *RedisRevokedTokenCache) key(jti string) string {
	return c.prefix + ":revoked:" + jti
}

func (c *RedisRevokedTokenCache) Add(jti string, exp time.Time) error {
	if !exp.After(time.Now()) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisRevocationTimeout)
	defer cancel()
	return c.client.Set(ctx, c.key(jti), "1", time.Until(exp)).Err()
}

// IsRevoked fails closed: a token is refused while Redis cannot be asked.
func (c *RedisRevokedTokenCache) IsRevoked(jti string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisRevocationTimeout)
	defer cancel()
	n, err := c.client.Exists(ctx, c.key(jti)).Result()
	if err != nil {
		log.Err(err).Str("jti", jti).Msg("checking token revocation")
		return true
	}
	return n > 0
}

func (c *RedisRevokedTokenCache) Cleanup() {}
