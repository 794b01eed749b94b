package search

import (
	"context"
	"log"
	"time"
)

// DefaultAnswerTTL bounds how long an identical prompt is served from cache.
// Transit status changes quickly so this stays short.
const DefaultAnswerTTL = 2 * time.Minute

// CachedProvider wraps a Provider with content-based caching.
type CachedProvider struct {
	provider Provider
	cache    ResultCache
	hasher   *ContentHasher
	ttl      time.Duration
}

// NewCachedProvider creates a provider that deduplicates identical prompts.
func NewCachedProvider(provider Provider, cache ResultCache, namespace string, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultAnswerTTL
	}
	return &CachedProvider{
		provider: provider,
		cache:    cache,
		hasher:   NewContentHasher(namespace),
		ttl:      ttl,
	}
}

// Generate checks the cache first, then calls the provider and caches the
// answer. Failures are never cached.
func (c *CachedProvider) Generate(ctx context.Context, prompt string) (*Answer, error) {
	contentHash := c.hasher.HashPrompt(prompt)

	if cached, found, err := c.cache.GetAnswer(contentHash); err == nil && found {
		log.Printf("Cache hit for prompt hash %s", contentHash[:8])
		return cached, nil
	}

	answer, err := c.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := c.cache.SetAnswer(contentHash, answer, c.ttl); err != nil {
		log.Printf("Failed to cache answer %s: %v", contentHash[:8], err)
	}

	return answer, nil
}

// HealthCheck delegates to the wrapped provider.
func (c *CachedProvider) HealthCheck(ctx context.Context) error {
	return c.provider.HealthCheck(ctx)
}

// IsCached reports whether prompt would be served without an upstream call.
func (c *CachedProvider) IsCached(prompt string) bool {
	return c.cache.IsAnswerCached(c.hasher.HashPrompt(prompt))
}
