package provider

import (
	"context"
	"time"
)

// TextGenerator 定義生成式文字模型介面：單一 prompt 進、純文字出
type TextGenerator interface {
	// Generate 送出 prompt 並回傳模型的原始文字
	Generate(ctx context.Context, prompt string) (string, error)

	// Model 獲取當前使用的模型名稱
	Model() string

	// Configured 是否已設定憑證
	Configured() bool
}

// Config 定義 AI 提供者配置
type Config struct {
	Name        string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}
