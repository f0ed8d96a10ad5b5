package recipe

import (
	"context"
	"errors"
	"testing"

	"recipe-pantry/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 測試用的文字生成器
type fakeGenerator struct {
	response   string
	err        error
	configured bool
	calls      int
	lastPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.response, f.err
}

func (f *fakeGenerator) Model() string    { return "fake-model" }
func (f *fakeGenerator) Configured() bool { return f.configured }

func newFakeGenerator(response string) *fakeGenerator {
	return &fakeGenerator{response: response, configured: true}
}

var sampleVideo = common.VideoInfo{
	VideoID:      "abc123def45",
	Title:        "簡単オムライス",
	Description:  "材料: 卵 2個、ご飯 200g",
	ChannelTitle: "料理チャンネル",
}

func TestExtractor_Extract(t *testing.T) {
	gen := newFakeGenerator(`{"ingredients":["卵 2個","ご飯 200g"],"steps":["卵を溶く","ご飯を炒める"],"servings":"1人分","cookingTime":null}`)
	extractor := NewExtractor(gen)

	recipe, err := extractor.Extract(context.Background(), sampleVideo)

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, sampleVideo.Title, recipe.Title)
	assert.Equal(t, sampleVideo.Description, recipe.Description)
	assert.Equal(t, []string{"卵 2個", "ご飯 200g"}, recipe.Ingredients)
	assert.Equal(t, []string{"卵を溶く", "ご飯を炒める"}, recipe.Steps)
	assert.Equal(t, common.Some("1人分"), recipe.Servings)
	assert.False(t, recipe.CookingTime.Valid)
	assert.Contains(t, gen.lastPrompt, sampleVideo.Title)
	assert.Contains(t, gen.lastPrompt, sampleVideo.Description)
	assert.Contains(t, gen.lastPrompt, sampleVideo.ChannelTitle)
}

func TestExtractor_RecoversWrappedJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"fenced block", "Here you go:\n```json\n{\"ingredients\":[\"卵 2個\"],\"steps\":[]}\n```\nEnjoy!"},
		{"uppercase fence tag", "```JSON\n{\"ingredients\":[\"卵 2個\"],\"steps\":[]}\n```"},
		{"prose around braces", "結果は次の通りです {\"ingredients\":[\"卵 2個\"],\"steps\":[]} 以上です"},
		{"bare json", `{"ingredients":["卵 2個"],"steps":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := NewExtractor(newFakeGenerator(tt.raw)).Extract(context.Background(), sampleVideo)
			require.NoError(t, err)
			assert.Equal(t, []string{"卵 2個"}, recipe.Ingredients)
			assert.Empty(t, recipe.Steps)
		})
	}
}

func TestExtractor_NormalizesMissingFields(t *testing.T) {
	recipe, err := NewExtractor(newFakeGenerator(`{"servings": 2}`)).Extract(context.Background(), sampleVideo)

	require.NoError(t, err)
	assert.NotNil(t, recipe.Ingredients)
	assert.NotNil(t, recipe.Steps)
	assert.Empty(t, recipe.Ingredients)
	assert.Equal(t, common.Some("2"), recipe.Servings)
	assert.True(t, recipe.IsEmpty())
}

func TestExtractor_ValidationBeforeNetwork(t *testing.T) {
	gen := newFakeGenerator(`{}`)

	_, err := NewExtractor(gen).Extract(context.Background(), common.VideoInfo{ChannelTitle: "和食ch"})

	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
	assert.Equal(t, 0, gen.calls)
}

func TestExtractor_WhitespaceTitleIsNotEmpty(t *testing.T) {
	gen := newFakeGenerator(`{"ingredients":[],"steps":[]}`)

	_, err := NewExtractor(gen).Extract(context.Background(), common.VideoInfo{Title: "  "})

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}

func TestExtractor_NotConfigured(t *testing.T) {
	gen := &fakeGenerator{configured: false}

	_, err := NewExtractor(gen).Extract(context.Background(), sampleVideo)
	require.Error(t, err)
	assert.True(t, common.IsConfigurationError(err))
	assert.Equal(t, 0, gen.calls)

	_, err = NewExtractor(nil).Extract(context.Background(), sampleVideo)
	assert.True(t, common.IsConfigurationError(err))
}

func TestExtractor_UpstreamFailures(t *testing.T) {
	t.Run("generator error", func(t *testing.T) {
		gen := newFakeGenerator("")
		gen.err = errors.New("connection reset")

		_, err := NewExtractor(gen).Extract(context.Background(), sampleVideo)
		require.Error(t, err)
		assert.True(t, common.IsUpstreamError(err))
		assert.Equal(t, 1, gen.calls)
	})

	t.Run("typed upstream error passes through", func(t *testing.T) {
		gen := newFakeGenerator("")
		gen.err = common.NewUpstreamError("gemini", 500, errors.New("boom"))

		_, err := NewExtractor(gen).Extract(context.Background(), sampleVideo)
		var upstream *common.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, 500, upstream.StatusCode)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := NewExtractor(newFakeGenerator("   ")).Extract(context.Background(), sampleVideo)
		assert.True(t, common.IsUpstreamError(err))
	})
}

func TestExtractor_ParseFailure(t *testing.T) {
	_, err := NewExtractor(newFakeGenerator("材料は卵とご飯です")).Extract(context.Background(), sampleVideo)

	require.Error(t, err)
	assert.True(t, common.IsExtractionParseError(err))
	assert.False(t, common.IsUpstreamError(err))
}

func TestRecoverJSONCandidate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"fenced", "```json\n {\"a\":1} \n```", `{"a":1}`},
		{"first and last brace", `x {"a":{"b":1}} y`, `{"a":{"b":1}}`},
		{"closing before opening", `} nothing {`, `} nothing {`},
		{"no braces", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RecoverJSONCandidate(tt.raw))
		})
	}
}

func TestParseExtraction_KeepsCandidate(t *testing.T) {
	_, err := ParseExtraction(`prefix {"ingredients": [} suffix`)

	var parseErr *common.ExtractionParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, `{"ingredients": [}`, parseErr.Candidate)
}
