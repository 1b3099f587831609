package notifications

import (
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

const cacheTTL = 300 // seconds

// Cache holds per-recipient unread counters in redis for badge display. A nil
// *Cache is valid and disables caching; every failure degrades to the store
// count silently.
type Cache struct {
	pool *redis.Pool
}

func NewCache(addr string) *Cache {
	return &Cache{pool: &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr)
		},
	}}
}

func key(recipientID uint) string {
	return fmt.Sprintf("unread:%d", recipientID)
}

func (c *Cache) Get(recipientID uint) (int64, bool) {
	if c == nil {
		return 0, false
	}
	conn := c.pool.Get()
	defer conn.Close()
	n, err := redis.Int64(conn.Do("GET", key(recipientID)))
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c *Cache) Set(recipientID uint, count int64) {
	if c == nil {
		return
	}
	conn := c.pool.Get()
	defer conn.Close()
	conn.Do("SETEX", key(recipientID), cacheTTL, count)
}

func (c *Cache) Invalidate(recipientID uint) {
	if c == nil {
		return
	}
	conn := c.pool.Get()
	defer conn.Close()
	conn.Do("DEL", key(recipientID))
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.pool.Close()
}
