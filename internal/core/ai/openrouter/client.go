package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipe-pantry/internal/core/ai/provider"
	"recipe-pantry/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	serviceName    = "openrouter"
	defaultBaseURL = "https://openrouter.ai/api/v1"
)

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Client OpenRouter API 客戶端
type Client struct {
	cfg    provider.Config
	client *resty.Client
}

var _ provider.TextGenerator = (*Client)(nil)

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg provider.Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-pantry.app").
		SetHeader("X-Title", "Recipe Pantry")

	return &Client{cfg: cfg, client: client}
}

// Model 獲取當前使用的模型名稱
func (c *Client) Model() string {
	return c.cfg.Model
}

// Configured 是否已設定 API Key
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", common.NewConfigurationError(serviceName, "OPENROUTER_API_KEY is not set")
	}

	req := &Request{
		Model: c.cfg.Model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	start := time.Now()
	content, err := c.send(ctx, req)
	common.LogAICall(req.Model, time.Since(start), err)
	return content, err
}

func (c *Client) send(ctx context.Context, req *Request) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return "", common.NewUpstreamError(serviceName, 0, fmt.Errorf("failed to send request: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(), errors.New(truncate(resp.String(), 512)))
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(), fmt.Errorf("failed to parse response: %w", err))
	}

	if len(result.Choices) == 0 {
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(), errors.New("empty choices in response"))
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(), errors.New("empty content in response"))
	}

	common.LogDebug("OpenRouter usage",
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
	)

	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
