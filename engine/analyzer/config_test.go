package analyzer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flowlens/flowlens/engine/analyzer"
	"github.com/flowlens/flowlens/engine/cache"
)

func TestDefaultConfig(t *testing.T) {
	t.Run("Should return valid default configuration", func(t *testing.T) {
		cfg := analyzer.DefaultConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, cache.DefaultCapacity, cfg.CacheCapacity)
		assert.True(t, cfg.ValidateIndentation)
		assert.Nil(t, cfg.Flowchart)
		assert.Nil(t, cfg.Heuristics)
	})

	t.Run("Should be used when creating a service with nil config", func(t *testing.T) {
		svc := analyzer.NewService(nil, nil)
		assert.NotNil(t, svc)
		assert.Equal(t, cache.DefaultCapacity, svc.CacheStats().Capacity)
	})
}

func TestNewService_CacheInjection(t *testing.T) {
	t.Run("Should use an injected cache instance", func(t *testing.T) {
		injected := cache.NewLRU(7)
		svc := analyzer.NewService(nil, injected)
		assert.Equal(t, 7, svc.CacheStats().Capacity)
	})
}
