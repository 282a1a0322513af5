package textutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edurag/internal/pkg/textutil"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{
			name:     "相同向量",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
		},
		{
			name:     "正交向量",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{0.0, 1.0, 0.0},
			expected: 0.0,
		},
		{
			name:     "相反向量",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{-1.0, 0.0, 0.0},
			expected: -1.0,
		},
		{
			name:     "零向量",
			a:        []float32{0, 0},
			b:        []float32{1, 1},
			expected: 0.0,
		},
		{
			name:     "长度不匹配",
			a:        []float32{1.0, 2.0},
			b:        []float32{1.0},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := textutil.CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}

func TestClampAndRound(t *testing.T) {
	assert.Equal(t, 0.0, textutil.Clamp01(-0.3))
	assert.Equal(t, 1.0, textutil.Clamp01(1.0000001))
	assert.Equal(t, 0.5, textutil.Clamp01(0.5))
	assert.Equal(t, 0.1235, textutil.Round(0.123456, 4))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "hello", textutil.TruncateString("hello", 10))
	assert.Equal(t, "hel", textutil.TruncateString("hello", 3))
	assert.Equal(t, "你好", textutil.TruncateString("你好世界", 2))
	assert.Equal(t, "ab...", textutil.Preview("abc", 2))
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", textutil.NormalizeSpace("  a\n\tb   c \n"))
	assert.True(t, textutil.IsBlank(" \n\t"))
}

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
	}{
		{
			name:     "纯数组",
			input:    `[{"a":1}]`,
			expected: `[{"a":1}]`,
		},
		{
			name:     "带前后说明",
			input:    "Here you go:\n[1, 2]\nHope this helps",
			expected: `[1, 2]`,
		},
		{
			name:     "代码块围栏",
			input:    "```json\n[\"x\"]\n```",
			expected: `["x"]`,
		},
		{
			name:        "无数组",
			input:       "no json here",
			shouldError: true,
		},
		{
			name:        "括号顺序颠倒",
			input:       "] oops [",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := textutil.ExtractJSONArray(tt.input)
			if tt.shouldError {
				require.ErrorIs(t, err, textutil.ErrNoJSONArray)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}
