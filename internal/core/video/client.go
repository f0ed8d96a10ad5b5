package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"recipe-pantry/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	serviceName    = "youtube"
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Config YouTube Data API 設定
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Thumbnail 縮圖
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Snippet 影片摘要
type Snippet struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	ChannelTitle string               `json:"channelTitle"`
	Thumbnails   map[string]Thumbnail `json:"thumbnails"`
}

// Item 單一影片
type Item struct {
	ID      string  `json:"id"`
	Snippet Snippet `json:"snippet"`
}

// ListResponse videos.list 響應
type ListResponse struct {
	Items []Item `json:"items"`
}

// Client YouTube Data API 客戶端
type Client struct {
	cfg    Config
	client *resty.Client
}

// NewClient 創建 YouTube 客戶端
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{cfg: cfg, client: client}
}

// Configured 是否已設定 API Key
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// GetVideo 取得影片標題、說明與縮圖
func (c *Client) GetVideo(ctx context.Context, videoID string) (*common.VideoInfo, error) {
	if !videoIDPattern.MatchString(videoID) {
		return nil, common.NewValidationError(fmt.Sprintf("invalid video id: %q", videoID))
	}
	if !c.Configured() {
		return nil, common.NewConfigurationError(serviceName, "YOUTUBE_API_KEY is not set")
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part": "snippet",
			"id":   videoID,
			"key":  c.cfg.APIKey,
		}).
		Get("/videos")
	if err != nil {
		return nil, common.NewUpstreamError(serviceName, 0, fmt.Errorf("failed to send request: %w", redactKey(err, c.cfg.APIKey)))
	}

	common.LogDebug("YouTube videos.list",
		zap.String("video_id", videoID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode() != http.StatusOK {
		body := resp.String()
		if len(body) > 512 {
			body = body[:512] + "..."
		}
		return nil, common.NewUpstreamError(serviceName, resp.StatusCode(), errors.New(body))
	}

	var result ListResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, common.NewUpstreamError(serviceName, resp.StatusCode(), fmt.Errorf("failed to parse response: %w", err))
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("video %s: %w", videoID, common.ErrRecordNotFound)
	}

	item := result.Items[0]
	return &common.VideoInfo{
		VideoID:      videoID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		ChannelTitle: item.Snippet.ChannelTitle,
		Thumbnail:    BestThumbnail(item.Snippet.Thumbnails),
	}, nil
}

// BestThumbnail 依解析度挑選縮圖
func BestThumbnail(thumbnails map[string]Thumbnail) string {
	for _, key := range []string{"maxres", "standard", "high", "medium", "default"} {
		if t, ok := thumbnails[key]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}

// ParseVideoID 從影片 ID 或各種 YouTube 網址取出 11 碼影片 ID
func ParseVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if videoIDPattern.MatchString(input) {
		return input, nil
	}

	raw := input
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", common.NewValidationError(fmt.Sprintf("invalid video url: %q", input))
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var candidate string
	switch host {
	case "youtu.be":
		candidate = strings.Trim(u.Path, "/")
	case "youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			candidate = v
			break
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) == 2 {
			switch segments[0] {
			case "shorts", "embed", "live", "v":
				candidate = segments[1]
			}
		}
	}

	if !videoIDPattern.MatchString(candidate) {
		return "", common.NewValidationError(fmt.Sprintf("could not find a video id in %q", input))
	}
	return candidate, nil
}

// redactKey 避免 API Key 出現在錯誤訊息（resty 的錯誤會帶完整網址）
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, common.MaskSecret(key)))
}
