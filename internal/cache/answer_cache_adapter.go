package cache

import (
	"fmt"
	"time"

	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
)

const answerSource = "answer"

// AnswerCacheAdapter makes the main Cache implement search.ResultCache
type AnswerCacheAdapter struct {
	cache *Cache
}

// NewAnswerCacheAdapter creates an adapter for model answer caching
func NewAnswerCacheAdapter(cache *Cache) *AnswerCacheAdapter {
	return &AnswerCacheAdapter{cache: cache}
}

func answerKey(contentHash string) string {
	return fmt.Sprintf("answer:%s", contentHash)
}

// SetAnswer implements search.ResultCache
func (a *AnswerCacheAdapter) SetAnswer(contentHash string, answer *search.Answer, ttl time.Duration) error {
	return a.cache.Set(answerKey(contentHash), answer, ttl, answerSource)
}

// GetAnswer implements search.ResultCache
func (a *AnswerCacheAdapter) GetAnswer(contentHash string) (*search.Answer, bool, error) {
	var answer search.Answer
	found, err := a.cache.Get(answerKey(contentHash), &answer)
	if err != nil || !found {
		return nil, false, err
	}
	return &answer, true, nil
}

// IsAnswerCached implements search.ResultCache
func (a *AnswerCacheAdapter) IsAnswerCached(contentHash string) bool {
	return !a.cache.IsStale(answerKey(contentHash))
}
