package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizQuestion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       QuizQuestion
		wantErr bool
	}{
		{
			name: "valid mcq",
			q:    QuizQuestion{Type: QuestionMCQ, Question: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: "4"},
		},
		{
			name:    "mcq answer not in options",
			q:       QuizQuestion{Type: QuestionMCQ, Question: "2+2?", Options: []string{"3", "5"}, CorrectAnswer: "4"},
			wantErr: true,
		},
		{
			name:    "mcq with one option",
			q:       QuizQuestion{Type: QuestionMCQ, Question: "2+2?", Options: []string{"4"}, CorrectAnswer: "4"},
			wantErr: true,
		},
		{
			name: "valid fill blanks",
			q:    QuizQuestion{Type: QuestionFillBlanks, Question: "The capital of France is ____.", CorrectAnswer: "Paris"},
		},
		{
			name:    "short with options",
			q:       QuizQuestion{Type: QuestionShort, Question: "Define osmosis.", Options: []string{"a"}, CorrectAnswer: "..."},
			wantErr: true,
		},
		{
			name:    "unknown type",
			q:       QuizQuestion{Type: "essay", Question: "Discuss.", CorrectAnswer: "..."},
			wantErr: true,
		},
		{
			name:    "blank answer",
			q:       QuizQuestion{Type: QuestionLong, Question: "Discuss.", CorrectAnswer: "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuizQuestion_Normalize(t *testing.T) {
	q := QuizQuestion{
		Type:          " MCQ ",
		Question:      " What? ",
		Options:       []string{" red ", "", "blue"},
		CorrectAnswer: "b",
	}
	q.Normalize()

	assert.Equal(t, QuestionMCQ, q.Type)
	assert.Equal(t, "What?", q.Question)
	assert.Equal(t, []string{"red", "blue"}, q.Options)
	assert.Equal(t, "blue", q.CorrectAnswer)
	assert.NoError(t, q.Validate())

	// the caller's option slice is left as it was
	raw := []string{" a ", "", "b"}
	m := QuizQuestion{Type: QuestionMCQ, Question: "x", Options: raw, CorrectAnswer: "a"}
	m.Normalize()
	assert.Equal(t, []string{"a", "b"}, m.Options)
	assert.Equal(t, []string{" a ", "", "b"}, raw)

	s := QuizQuestion{Type: "short", Question: "x", Options: []string{"a"}, CorrectAnswer: "y"}
	s.Normalize()
	assert.Nil(t, s.Options)
}

func TestVector_RoundTrip(t *testing.T) {
	v := Vector{0.5, -1.25, 3}
	got, err := DecodeVector(v.Encode())
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = DecodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestSourceList_Scan(t *testing.T) {
	var s SourceList
	require.NoError(t, s.Scan(`[{"page_number":2,"similarity":0.9,"content":"x"}]`))
	require.Len(t, s, 1)
	assert.Equal(t, 2, s[0].PageNumber)

	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s)

	v, err := SourceList(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestQuestionList_NilValue(t *testing.T) {
	v, err := QuestionList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
