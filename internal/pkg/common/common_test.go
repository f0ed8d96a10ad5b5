package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected OptionalString
	}{
		{name: "string input", input: `"2人分"`, expected: Some("2人分")},
		{name: "number input", input: `4`, expected: Some("4")},
		{name: "null input", input: `null`, expected: None()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got OptionalString
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("should reject objects", func(t *testing.T) {
		var got OptionalString
		assert.Error(t, json.Unmarshal([]byte(`{"value":"2"}`), &got))
	})
}

func TestOptionalString_MissingFieldStaysInvalid(t *testing.T) {
	var recipe ExtractedRecipe
	require.NoError(t, ParseJSON(`{"ingredients":["卵"]}`, &recipe))
	assert.False(t, recipe.Servings.Valid)
	assert.Nil(t, recipe.CookingTime.Ptr())
}

func TestOptionalString_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(ExtractedRecipe{Servings: Some("2人分")})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"servings":"2人分"`)
	assert.Contains(t, string(data), `"cooking_time":null`)
}

func TestExtractedRecipe_IsEmpty(t *testing.T) {
	assert.True(t, (*ExtractedRecipe)(nil).IsEmpty())
	assert.True(t, (&ExtractedRecipe{}).IsEmpty())
	assert.False(t, (&ExtractedRecipe{Steps: []string{"焼く"}}).IsEmpty())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("title or description is required"), ErrCodeInvalidRequest, http.StatusBadRequest},
		{"configuration", NewConfigurationError("gemini", "missing api key"), ErrCodeNotConfigured, http.StatusServiceUnavailable},
		{"upstream", NewUpstreamError("gemini", 500, errors.New("boom")), ErrCodeUpstreamError, http.StatusBadGateway},
		{"parse", NewExtractionParseError("{", errors.New("unexpected EOF")), ErrCodeExtractionParseError, http.StatusBadGateway},
		{"nothing extracted", fmt.Errorf("analyze: %w", ErrNothingExtracted), ErrCodeNoRecipeFound, http.StatusUnprocessableEntity},
		{"not found", ErrRecordNotFound, ErrCodeNotFound, http.StatusNotFound},
		{"not analyzed", fmt.Errorf("video x: %w", ErrNotAnalyzed), ErrCodeConflict, http.StatusConflict},
		{"custom", ErrTooManyRequests, ErrCodeTooManyRequests, http.StatusTooManyRequests},
		{"other", errors.New("disk on fire"), ErrCodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.Status)
		})
	}

	assert.Nil(t, ClassifyError(nil))
	assert.Equal(t, "YouTube 服務尚未設定", ClassifyError(NewConfigurationError("youtube", "no key")).Message)
}

func TestWrappedErrorsAreDetected(t *testing.T) {
	err := fmt.Errorf("extract: %w", NewExtractionParseError("x", errors.New("bad")))
	assert.True(t, IsExtractionParseError(err))
	assert.False(t, IsUpstreamError(err))
	assert.False(t, IsValidationError(err))
}

func TestParseJSON_RejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	assert.Error(t, ParseJSON(`{"a":1} {"b":2}`, &v))
	assert.NoError(t, ParseJSON(`{"a":1}`, &v))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "****", MaskSecret("short"))
	assert.Equal(t, "abcd...wxyz", MaskSecret("abcdefghijklmnopqrstuvwxyz"))
}
