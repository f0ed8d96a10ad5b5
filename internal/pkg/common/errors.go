package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 必要輸入缺漏，不會發出任何網路請求
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// ConfigurationError 外部服務缺少憑證或設定
type ConfigurationError struct {
	Service string
	message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.message)
}

// NewConfigurationError 創建新的設定錯誤
func NewConfigurationError(service, message string) error {
	return &ConfigurationError{Service: service, message: message}
}

// IsConfigurationError 檢查是否為設定錯誤
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// UpstreamError 外部服務呼叫失敗或回應無法使用
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s upstream error (status %d): %v", e.Service, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s upstream error: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError 創建新的上游錯誤
func NewUpstreamError(service string, statusCode int, err error) error {
	return &UpstreamError{Service: service, StatusCode: statusCode, Err: err}
}

// IsUpstreamError 檢查是否為上游錯誤
func IsUpstreamError(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

// ExtractionParseError 模型回應中取出的候選文字不是合法 JSON
type ExtractionParseError struct {
	Candidate string
	Err       error
}

func (e *ExtractionParseError) Error() string {
	return fmt.Sprintf("failed to parse extracted recipe JSON: %v", e.Err)
}

func (e *ExtractionParseError) Unwrap() error {
	return e.Err
}

// NewExtractionParseError 創建新的解析錯誤
func NewExtractionParseError(candidate string, err error) error {
	return &ExtractionParseError{Candidate: candidate, Err: err}
}

// IsExtractionParseError 檢查是否為解析錯誤
func IsExtractionParseError(err error) bool {
	var target *ExtractionParseError
	return errors.As(err, &target)
}

var (
	// ErrNothingExtracted 解析成功但食材與步驟皆為空
	ErrNothingExtracted = errors.New("no recipe data found in video")
	// ErrRecordNotFound 資料不存在
	ErrRecordNotFound = errors.New("record not found")
	// ErrNotAnalyzed 影片尚未抽取食譜
	ErrNotAnalyzed = errors.New("video has not been analyzed yet")
)

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeUnauthorized     = "UNAUTHORIZED"       // 401
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeConflict         = "CONFLICT"           // 409
	ErrCodeNoRecipeFound    = "NO_RECIPE_FOUND"    // 422
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError        = "INTERNAL_ERROR"         // 500
	ErrCodeUpstreamError        = "UPSTREAM_ERROR"         // 502
	ErrCodeExtractionParseError = "EXTRACTION_PARSE_ERROR" // 502
	ErrCodeNotConfigured        = "LLM_NOT_CONFIGURED"     // 503
	ErrCodeGatewayTimeout       = "GATEWAY_TIMEOUT"        // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "未授權的訪問", http.StatusUnauthorized, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "不支持的請求方法", http.StatusMethodNotAllowed, nil)
	ErrConflict         = NewError(ErrCodeConflict, "資源衝突", http.StatusConflict, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrNoRecipeFound    = NewError(ErrCodeNoRecipeFound, "影片中找不到食譜資訊", http.StatusUnprocessableEntity, nil)

	// 服務器錯誤
	ErrInternalError   = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrUpstream        = NewError(ErrCodeUpstreamError, "外部服務錯誤", http.StatusBadGateway, nil)
	ErrExtractionParse = NewError(ErrCodeExtractionParseError, "AI 回應解析失敗", http.StatusBadGateway, nil)
	ErrNotConfigured   = NewError(ErrCodeNotConfigured, "AI 服務尚未設定", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout  = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrCacheFull = NewError("CACHE_FULL", "緩存已滿", http.StatusServiceUnavailable, nil)
)

// ClassifyError 將錯誤對應到預定義的 API 錯誤
func ClassifyError(err error) *CustomError {
	var custom *CustomError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &custom):
		return custom
	case IsValidationError(err):
		return NewError(ErrCodeInvalidRequest, err.Error(), http.StatusBadRequest, err)
	case IsConfigurationError(err):
		var cfgErr *ConfigurationError
		errors.As(err, &cfgErr)
		if cfgErr.Service == "youtube" {
			return NewError(ErrCodeNotConfigured, "YouTube 服務尚未設定", ErrNotConfigured.Status, err)
		}
		return NewError(ErrCodeNotConfigured, ErrNotConfigured.Message, ErrNotConfigured.Status, err)
	case IsExtractionParseError(err):
		return NewError(ErrCodeExtractionParseError, ErrExtractionParse.Message, ErrExtractionParse.Status, err)
	case IsUpstreamError(err):
		return NewError(ErrCodeUpstreamError, ErrUpstream.Message, ErrUpstream.Status, err)
	case errors.Is(err, ErrNothingExtracted):
		return NewError(ErrCodeNoRecipeFound, ErrNoRecipeFound.Message, ErrNoRecipeFound.Status, err)
	case errors.Is(err, ErrRecordNotFound):
		return NewError(ErrCodeNotFound, ErrNotFound.Message, ErrNotFound.Status, err)
	case errors.Is(err, ErrNotAnalyzed):
		return NewError(ErrCodeConflict, "影片尚未分析，請先抽取食譜", ErrConflict.Status, err)
	default:
		return NewError(ErrCodeInternalError, ErrInternalError.Message, ErrInternalError.Status, err)
	}
}
