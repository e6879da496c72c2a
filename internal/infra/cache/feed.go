package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/nik132-eng/roastit/internal/domain"
)

const (
	feedTTL        = 30 * time.Second
	feedGenKey     = "roastit:feed:gen"
	feedKeyPattern = "roastit:feed:%d:%s:%d"
)

type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
}

// FeedCache keeps rendered feed pages in memcached. Pages are keyed by a
// generation number, so invalidation is a single increment and stale pages
// simply expire.
type FeedCache struct {
	mc memcacheClient
}

func NewFeedCache(mc *memcache.Client) *FeedCache {
	return &FeedCache{mc: mc}
}

func (c *FeedCache) generation() (uint64, error) {
	item, err := c.mc.Get(feedGenKey)
	if err == memcache.ErrCacheMiss {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(item.Value), 10, 64)
}

func (c *FeedCache) key(q domain.FeedQuery) (string, error) {
	gen, err := c.generation()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(feedKeyPattern, gen, q.Sort, q.Limit), nil
}

func (c *FeedCache) Get(ctx context.Context, q domain.FeedQuery) ([]domain.Post, bool) {
	key, err := c.key(q)
	if err != nil {
		slog.DebugContext(ctx, "feed cache unavailable", slog.String("error", err.Error()), slog.String("module", "cache"))
		return nil, false
	}

	item, err := c.mc.Get(key)
	if err != nil {
		return nil, false
	}

	var posts []domain.Post
	if err := json.Unmarshal(item.Value, &posts); err != nil {
		return nil, false
	}
	return posts, true
}

func (c *FeedCache) Set(ctx context.Context, q domain.FeedQuery, posts []domain.Post) {
	key, err := c.key(q)
	if err != nil {
		return
	}

	value, err := json.Marshal(posts)
	if err != nil {
		return
	}

	err = c.mc.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(feedTTL.Seconds()),
	})
	if err != nil {
		slog.DebugContext(ctx, "feed cache set failed", slog.String("error", err.Error()), slog.String("module", "cache"))
	}
}

func (c *FeedCache) Invalidate(ctx context.Context) {
	_, err := c.mc.Increment(feedGenKey, 1)
	if err == memcache.ErrCacheMiss {
		err = c.mc.Set(&memcache.Item{Key: feedGenKey, Value: []byte("1")})
	}
	if err != nil {
		slog.WarnContext(ctx, "feed cache invalidate failed", slog.String("error", err.Error()), slog.String("module", "cache"))
	}
}
