package service

import (
	"fmt"
	"strings"

	"recipe-pantry/internal/core/ai/gemini"
	"recipe-pantry/internal/core/ai/openrouter"
	"recipe-pantry/internal/core/ai/provider"
	"recipe-pantry/internal/infrastructure/config"
	"recipe-pantry/internal/pkg/common"

	"go.uber.org/zap"
)

// NewGenerator 依設定建立生成式模型客戶端
// 未設定金鑰時仍回傳客戶端，呼叫時才回報 ConfigurationError
func NewGenerator(cfg *config.Config) (provider.TextGenerator, error) {
	pc := provider.Config{
		Name:        strings.ToLower(cfg.LLM.Provider),
		APIKey:      cfg.LLM.LLMAPIKey(),
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}

	var generator provider.TextGenerator
	switch pc.Name {
	case "gemini":
		pc.BaseURL = cfg.LLM.GeminiBaseURL
		generator = gemini.NewClient(pc)
	case "openrouter":
		pc.BaseURL = cfg.LLM.OpenRouterURL
		generator = openrouter.NewClient(pc)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}

	if !generator.Configured() {
		common.LogWarn("LLM API key is not set, recipe extraction will be unavailable",
			zap.String("provider", pc.Name),
		)
	}

	common.LogInfo("LLM client initialized",
		zap.String("provider", pc.Name),
		zap.String("model", pc.Model),
		zap.Duration("timeout", pc.Timeout),
	)

	return generator, nil
}
