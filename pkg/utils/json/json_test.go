package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type source struct {
	PageNumber int     `json:"page_number"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content,omitempty"`
}

func TestMarshalUnmarshal(t *testing.T) {
	in := []source{{PageNumber: 2, Similarity: 0.8123, Content: "photosynthesis"}}

	data, err := Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"page_number":2`)

	var out []source
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestOmitEmpty(t *testing.T) {
	data, err := Marshal(source{PageNumber: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "content")
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`[{"type":"mcq"}]`)))
	assert.False(t, Valid([]byte(`[{"type":"mcq"`)))
}

func TestDecoder(t *testing.T) {
	var out map[string]string
	require.NoError(t, NewDecoder(strings.NewReader(`{"answer":"42"}`)).Decode(&out))
	assert.Equal(t, "42", out["answer"])
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(map[string]int{"a": 1}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n")
}
