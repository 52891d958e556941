// Package mediacache remembers the Telegram file id obtained after a media
// URL was uploaded once, so the next send reuses the file instead of the URL.
package mediacache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

const DefaultTTL = 30 * 24 * time.Hour

type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Resolve swaps a URL-only media reference for a cached file id when one is known.
func (c *Cache) Resolve(ctx context.Context, media domain.Media) (domain.Media, error) {
	if c == nil || c.client == nil || media.FileID != "" || media.URL == "" {
		return media, nil
	}

	fileID, err := c.client.Get(ctx, cacheKey(media.URL)).Result()
	if errors.Is(err, redis.Nil) {
		return media, nil
	}
	if err != nil {
		return media, fmt.Errorf("get cached file id: %w", err)
	}

	media.FileID = fileID
	return media, nil
}

// Remember stores the file id Telegram assigned to url.
func (c *Cache) Remember(ctx context.Context, url, fileID string) error {
	if c == nil || c.client == nil || url == "" || fileID == "" {
		return nil
	}

	if err := c.client.Set(ctx, cacheKey(url), fileID, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached file id: %w", err)
	}
	return nil
}

func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return "media:" + hex.EncodeToString(sum[:])
}
