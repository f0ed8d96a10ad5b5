package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"recipe-pantry/internal/core/ai/provider"
	"recipe-pantry/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	serviceName    = "gemini"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// Part 內容片段
type Part struct {
	Text string `json:"text"`
}

// Content 對話內容
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig 生成參數
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Request generateContent 請求
type Request struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Candidate 候選回應
type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// Response generateContent 響應
type Response struct {
	Candidates    []Candidate `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Text 合併第一個候選的所有文字片段
func (r *Response) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// Client Gemini API 客戶端
type Client struct {
	cfg    provider.Config
	client *resty.Client
}

var _ provider.TextGenerator = (*Client)(nil)

// NewClient 創建 Gemini 客戶端
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
		SetHeader("x-goog-api-key", cfg.APIKey)

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
		return "", common.NewConfigurationError(serviceName, "GEMINI_API_KEY is not set")
	}

	req := &Request{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: prompt}}},
		},
		GenerationConfig: &GenerationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxTokens,
		},
	}

	common.LogInfo("Sending request to Gemini",
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	start := time.Now()
	text, err := c.send(ctx, req)
	common.LogAICall(c.cfg.Model, time.Since(start), err)
	return text, err
}

func (c *Client) send(ctx context.Context, req *Request) (string, error) {
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.cfg.Model))

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(path)
	if err != nil {
		return "", common.NewUpstreamError(serviceName, 0, fmt.Errorf("failed to send request: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		body := resp.String()
		if len(body) > 512 {
			body = body[:512] + "..."
		}
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(), errors.New(body))
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(), fmt.Errorf("failed to parse response: %w", err))
	}

	if len(result.Candidates) == 0 {
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(), errors.New("no candidates in response"))
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", common.NewUpstreamError(serviceName, resp.StatusCode(),
			fmt.Errorf("empty text in response (finish reason: %s)", result.Candidates[0].FinishReason))
	}

	common.LogDebug("Gemini usage",
		zap.Int("prompt_tokens", result.UsageMetadata.PromptTokenCount),
		zap.Int("candidate_tokens", result.UsageMetadata.CandidatesTokenCount),
	)

	return text, nil
}
