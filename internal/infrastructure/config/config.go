package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"recipe-pantry/internal/pkg/common"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	LLM         LLMConfig       `mapstructure:"llm"`
	YouTube     YouTubeConfig   `mapstructure:"youtube"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogDir      string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// LLMConfig 生成式模型設定
type LLMConfig struct {
	Provider         string        `mapstructure:"provider"` // gemini | openrouter
	Model            string        `mapstructure:"model"`
	GeminiAPIKey     string        `mapstructure:"gemini_api_key"`
	GeminiBaseURL    string        `mapstructure:"gemini_base_url"`
	OpenRouterAPIKey string        `mapstructure:"openrouter_api_key"`
	OpenRouterURL    string        `mapstructure:"openrouter_base_url"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Temperature      float64       `mapstructure:"temperature"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// YouTubeConfig YouTube Data API 設定
type YouTubeConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig 資料庫設定
type DatabaseConfig struct {
	Path     string `mapstructure:"path"`
	LogLevel string `mapstructure:"log_level"`
}

// CacheConfig 食譜快取設定
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory | redis
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LLMAPIKey 目前供應商使用的金鑰
func (c LLMConfig) LLMAPIKey() string {
	if strings.EqualFold(c.Provider, "openrouter") {
		return c.OpenRouterAPIKey
	}
	return c.GeminiAPIKey
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時改用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("llm.provider", "LLM_PROVIDER")
	_ = v.BindEnv("llm.model", "LLM_MODEL")
	_ = v.BindEnv("llm.gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.openrouter_api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("llm.timeout", "LLM_TIMEOUT")
	_ = v.BindEnv("youtube.api_key", "YOUTUBE_API_KEY")
	_ = v.BindEnv("database.path", "DATABASE_PATH")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("cache.backend", "CACHE_BACKEND")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("log_dir", "LOG_DIR")

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"llm_provider:", v.GetString("llm.provider"),
		"llm_model:", v.GetString("llm.model"),
		"gemini_api_key:", common.MaskSecret(v.GetString("llm.gemini_api_key")),
	)

	return decode(v)
}

// decode 解析並驗證設定
func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default 只含預設值的設定，測試與工具程式使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-pantry")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "80s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 生成式模型設定
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.gemini_base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", "60s")

	// YouTube 設定
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.timeout", "15s")

	// 資料庫設定
	v.SetDefault("database.path", "data/recipe-pantry.db")
	v.SetDefault("database.log_level", "warn")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "recipe-pantry:")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch strings.ToLower(config.LLM.Provider) {
	case "gemini", "openrouter":
	default:
		return fmt.Errorf("unsupported llm provider: %s", config.LLM.Provider)
	}
	if config.LLM.Model == "" {
		return fmt.Errorf("llm model is required")
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory", "redis":
		default:
			return fmt.Errorf("unsupported cache backend: %s", config.Cache.Backend)
		}
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證限流設定
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}
