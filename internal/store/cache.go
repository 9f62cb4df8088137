package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewRedisClient connects to addr and pings it. An empty addr or a failed ping
// returns a nil client, and every Redis-backed helper treats nil as "disabled".
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// CachedStore is a read-through Redis cache in front of another Store.
// Reads inside Update bypass the cache; keys written by a committed Update
// are deleted from Redis afterwards.
type CachedStore struct {
	inner  Store
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedStore wraps inner. With a nil client it is a pass-through.
func NewCachedStore(inner Store, client *redis.Client, namespace string, ttl time.Duration) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStore{
		inner:  inner,
		client: client,
		prefix: "invoizo:" + namespace + ":",
		ttl:    ttl,
	}
}

func (c *CachedStore) cacheKey(key string) string { return c.prefix + key }

// versionKey is bumped on every invalidation of key. A read-through fill
// watches it and is dropped when a write lands between the read and the Set.
func (c *CachedStore) versionKey(key string) string { return c.prefix + "v:" + key }

func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.client == nil {
		return c.inner.Get(ctx, key)
	}

	data, err := c.client.Get(ctx, c.cacheKey(key)).Bytes()
	if err == nil {
		return data, true, nil
	}
	if !errors.Is(err, redis.Nil) {
		log.WithFields(logrus.Fields{"key": key, "error": err.Error()}).Warn("redis get failed, reading through")
	}

	var (
		ok      bool
		readErr error
		read    bool
	)
	werr := c.client.Watch(ctx, func(tx *redis.Tx) error {
		data, ok, readErr = c.inner.Get(ctx, key)
		read = true
		if readErr != nil || !ok {
			return nil
		}
		_, err := tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.cacheKey(key), data, c.ttl)
			return nil
		})
		return err
	}, c.versionKey(key))
	if werr != nil && !errors.Is(werr, redis.TxFailedErr) {
		log.WithFields(logrus.Fields{"key": key, "error": werr.Error()}).Warn("redis fill failed")
	}
	if !read {
		return c.inner.Get(ctx, key)
	}
	return data, ok, readErr
}

func (c *CachedStore) Put(ctx context.Context, key string, value []byte) error {
	if err := c.inner.Put(ctx, key, value); err != nil {
		return err
	}
	c.invalidate(ctx, key)
	return nil
}

func (c *CachedStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	var (
		mu      sync.Mutex
		written []string
	)
	err := c.inner.Update(ctx, func(tx Tx) error {
		return fn(&trackingTx{Tx: tx, onPut: func(key string) {
			mu.Lock()
			written = append(written, key)
			mu.Unlock()
		}})
	})
	if err != nil {
		return err
	}
	c.invalidate(ctx, written...)
	return nil
}

func (c *CachedStore) Keys(ctx context.Context) ([]string, error) {
	return c.inner.Keys(ctx)
}

func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if c.client == nil || len(keys) == 0 {
		return
	}
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, c.versionKey(k))
			p.Del(ctx, c.cacheKey(k))
		}
		return nil
	})
	if err != nil {
		log.WithFields(logrus.Fields{"keys": keys, "error": err.Error()}).Warn("redis invalidate failed")
	}
}

type trackingTx struct {
	Tx
	onPut func(key string)
}

func (t *trackingTx) Put(ctx context.Context, key string, value []byte) error {
	if err := t.Tx.Put(ctx, key, value); err != nil {
		return err
	}
	t.onPut(key)
	return nil
}

func (t *trackingTx) markMalformed(key string) {
	if m, ok := t.Tx.(malformedTracker); ok {
		m.markMalformed(key)
	}
}

func (t *trackingTx) isMalformed(key string) bool {
	m, ok := t.Tx.(malformedTracker)
	return ok && m.isMalformed(key)
}
