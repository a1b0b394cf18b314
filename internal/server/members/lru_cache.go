package members

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type cachedCredential struct {
	passwordHash string
	createdAt    time.Time
}

// LRUCache is an in-process CredentialCache backed by an expirable LRU.
// Entries age out after the configured TTL, so the cache may lag the durable
// store in both directions; it is never consulted as an authority.
type LRUCache struct {
	entries *expirable.LRU[string, cachedCredential]
}

func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	return &LRUCache{
		entries: expirable.NewLRU[string, cachedCredential](size, nil, ttl),
	}
}

func (c *LRUCache) Exists(id string) bool {
	_, ok := c.entries.Get(id)
	return ok
}

func (c *LRUCache) Add(id string, passwordHash string, createdAt time.Time) {
	c.entries.Add(id, cachedCredential{passwordHash: passwordHash, createdAt: createdAt})
}

func (c *LRUCache) Remove(id string) {
	c.entries.Remove(id)
}
