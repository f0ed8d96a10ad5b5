package service

import (
	"testing"

	"recipe-pantry/internal/core/ai/gemini"
	"recipe-pantry/internal/core/ai/openrouter"
	"recipe-pantry/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerator(t *testing.T) {
	t.Run("gemini provider", func(t *testing.T) {
		cfg := config.Default()
		cfg.LLM.GeminiAPIKey = "key"

		gen, err := NewGenerator(cfg)
		require.NoError(t, err)
		assert.IsType(t, &gemini.Client{}, gen)
		assert.True(t, gen.Configured())
		assert.Equal(t, cfg.LLM.Model, gen.Model())
	})

	t.Run("openrouter provider", func(t *testing.T) {
		cfg := config.Default()
		cfg.LLM.Provider = "OpenRouter"
		cfg.LLM.Model = "google/gemini-flash-1.5"

		gen, err := NewGenerator(cfg)
		require.NoError(t, err)
		assert.IsType(t, &openrouter.Client{}, gen)
		assert.False(t, gen.Configured())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := config.Default()
		cfg.LLM.Provider = "nope"

		gen, err := NewGenerator(cfg)
		assert.Error(t, err)
		assert.Nil(t, gen)
	})
}
