package services

import (
	"fmt"
	"net/http"

	"github.com/maxsviluppo/Aitraffic/internal/cache"
	"github.com/maxsviluppo/Aitraffic/internal/clients/gemini"
	"github.com/maxsviluppo/Aitraffic/internal/config"
	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
)

// NewProvider builds the configured model backend. When c is non-nil and
// caching is enabled the provider is wrapped with a CachedProvider.
func NewProvider(cfg *config.Config, c *cache.Cache) (search.Provider, error) {
	pc := cfg.Provider

	var provider search.Provider
	switch pc.Kind {
	case config.ProviderGemini:
		client := gemini.NewClientWithHTTPDoer(pc.APIKey, pc.BaseURL, &http.Client{Timeout: pc.Timeout}).
			WithModel(pc.Model)
		if pc.Temperature > 0 {
			client = client.WithTemperature(pc.Temperature)
		}
		provider = client
	case config.ProviderOpenAI:
		provider = search.NewOpenAIProvider(search.OpenAIOptions{
			APIKey:      pc.APIKey,
			Model:       pc.Model,
			BaseURL:     pc.BaseURL,
			Temperature: pc.Temperature,
			HTTPClient:  &http.Client{Timeout: pc.Timeout},
		})
	default:
		return nil, fmt.Errorf("unknown provider kind %q", pc.Kind)
	}

	if c == nil || !cfg.Cache.Enabled {
		return provider, nil
	}
	namespace := pc.Kind + "/" + pc.Model
	return search.NewCachedProvider(provider, cache.NewAnswerCacheAdapter(c), namespace, cfg.Cache.TTL), nil
}
