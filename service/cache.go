package service

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// Cache 小组件结果缓存
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// MemcacheCache 基于 memcached 的缓存
type MemcacheCache struct {
	client *memcache.Client
}

// NewMemcacheCache 连接 memcached，Ping 失败时返回错误
func NewMemcacheCache(hosts ...string) (*MemcacheCache, error) {
	mc := memcache.New(hosts...)
	mc.Timeout = time.Second
	if err := mc.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping memcached")
	}
	return &MemcacheCache{client: mc}, nil
}

func (c *MemcacheCache) Get(key string) ([]byte, error) {
	item, err := c.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (c *MemcacheCache) Set(key string, value []byte, ttl time.Duration) error {
	return c.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
}
