package fdfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/fdfskit/pkg/cache"
	"github.com/dmitrymomot/fdfskit/pkg/file"
	"github.com/dmitrymomot/fdfskit/pkg/redis"
)

// FileInfo is what FileInfo reports about a stored file.
type FileInfo struct {
	Group       string    `json:"group"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	CreateTime  time.Time `json:"create_time"`
	CRC32       uint32    `json:"crc32"`
	ContentType string    `json:"content_type"`
}

func (i FileInfo) StorePath() StorePath { return StorePath{Group: i.Group, Path: i.Path} }

func infoFromObject(sp StorePath, obj *file.Object) FileInfo {
	return FileInfo{
		Group:       sp.Group,
		Path:        sp.Path,
		Size:        obj.Size,
		CreateTime:  obj.ModTime,
		CRC32:       obj.Checksum,
		ContentType: obj.ContentType,
	}
}

// InfoCache stores FileInfo by full path. Errors are reported to the
// client, which logs them and falls back to the backend.
type InfoCache interface {
	Get(ctx context.Context, fullPath string) (FileInfo, bool, error)
	Set(ctx context.Context, info FileInfo) error
	Delete(ctx context.Context, fullPath string) error
}

// MemoryInfoCache keeps FileInfo in a process-local LRU.
type MemoryInfoCache struct {
	lru *cache.LRU[string, FileInfo]
}

// NewMemoryInfoCache holds up to size entries, each for ttl (0 for no expiry).
// A non-positive size falls back to 1024.
func NewMemoryInfoCache(size int, ttl time.Duration, opts ...cache.Option[string, FileInfo]) *MemoryInfoCache {
	if size <= 0 {
		size = 1024
	}
	opts = append([]cache.Option[string, FileInfo]{cache.WithTTL[string, FileInfo](ttl)}, opts...)
	return &MemoryInfoCache{lru: cache.NewLRU(size, opts...)}
}

func (c *MemoryInfoCache) Get(_ context.Context, fullPath string) (FileInfo, bool, error) {
	info, ok := c.lru.Get(fullPath)
	return info, ok, nil
}

func (c *MemoryInfoCache) Set(_ context.Context, info FileInfo) error {
	c.lru.Put(info.StorePath().FullPath(), info)
	return nil
}

func (c *MemoryInfoCache) Delete(_ context.Context, fullPath string) error {
	c.lru.Remove(fullPath)
	return nil
}

func (c *MemoryInfoCache) Len() int { return c.lru.Len() }

const redisInfoPrefix = "info:"

// RedisInfoCache shares FileInfo between processes through Redis, encoded
// as JSON.
type RedisInfoCache struct {
	store *redis.Store
	ttl   time.Duration
}

func NewRedisInfoCache(store *redis.Store, ttl time.Duration) *RedisInfoCache {
	return &RedisInfoCache{store: store, ttl: max(ttl, 0)}
}

func (c *RedisInfoCache) Get(ctx context.Context, fullPath string) (FileInfo, bool, error) {
	data, err := c.store.Get(ctx, redisInfoPrefix+fullPath)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return FileInfo{}, false, nil
	}
	if err != nil {
		return FileInfo{}, false, err
	}

	var info FileInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return FileInfo{}, false, fmt.Errorf("decode cached info for %s: %w", fullPath, err)
	}
	return info, true, nil
}

func (c *RedisInfoCache) Set(ctx context.Context, info FileInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, redisInfoPrefix+info.StorePath().FullPath(), data, c.ttl)
}

func (c *RedisInfoCache) Delete(ctx context.Context, fullPath string) error {
	return c.store.Delete(ctx, redisInfoPrefix+fullPath)
}
