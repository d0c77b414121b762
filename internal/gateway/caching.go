package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/storewise/storewise/internal/cache"
	"github.com/storewise/storewise/internal/observability"
)

// cacheableTasks lists the tasks whose responses depend only on the prompt.
// Correction and analysis prompts embed attempt-specific context and are
// never cached.
var cacheableTasks = map[Task]bool{
	TaskGuardrail:   true,
	TaskGenerateSQL: true,
	TaskVizDecide:   true,
}

// CachingClient caches completions for prompt-deterministic tasks. Cache
// failures degrade to the inner client; they never fail a run.
type CachingClient struct {
	inner Client
	store cache.Cache
	ttl   time.Duration
}

func NewCachingClient(inner Client, store cache.Cache, ttl time.Duration) *CachingClient {
	return &CachingClient{inner: inner, store: store, ttl: ttl}
}

func (c *CachingClient) Complete(ctx context.Context, task Task, prompt Prompt) (string, error) {
	if c.store == nil || !cacheableTasks[task] {
		return c.inner.Complete(ctx, task, prompt)
	}

	key := cacheKey(task, prompt)
	value, found, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		observability.IncrementCacheEvent("error")
	case found:
		observability.IncrementCacheEvent("hit")
		return string(value), nil
	default:
		observability.IncrementCacheEvent("miss")
	}

	content, err := c.inner.Complete(ctx, task, prompt)
	if err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, key, []byte(content), c.ttl); err != nil {
		observability.IncrementCacheEvent("error")
	} else {
		observability.IncrementCacheEvent("store")
	}
	return content, nil
}

// cacheKey hashes the full prompt, so any change to the schema context or
// the question produces a fresh entry.
func cacheKey(task Task, prompt Prompt) string {
	sum := sha256.Sum256([]byte(prompt.System + "\x00" + prompt.User))
	return string(task) + ":" + hex.EncodeToString(sum[:])
}
