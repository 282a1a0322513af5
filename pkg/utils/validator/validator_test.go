package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type askRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Question  string `json:"question" validate:"required,notblank"`
}

type chatRequest struct {
	Role    string `json:"role" validate:"required,chatrole"`
	Content string `json:"content" validate:"required"`
}

type question struct {
	Type string `json:"type" validate:"required,qtype"`
}

type upload struct {
	Filename string `json:"filename" validate:"required,pdfname"`
}

func TestGlobalIsShared(t *testing.T) {
	v := Global()
	require.NotNil(t, v)
	assert.Same(t, v, Global())

	custom := New()
	SetGlobal(custom)
	defer SetGlobal(v)
	assert.Same(t, custom, Global())
}

func TestJSONFieldNames(t *testing.T) {
	errs := New().Validate(askRequest{})
	require.NotNil(t, errs)
	assert.Equal(t, 2, errs.Count())
	assert.Len(t, errs.ForField("subject_id"), 1)
	assert.Len(t, errs.ForField("question"), 1)
}

func TestNotBlank(t *testing.T) {
	errs := New().Validate(askRequest{SubjectID: "s", Question: "   "})
	require.NotNil(t, errs)
	assert.Equal(t, TagNotBlank, errs.First().Tag)
	assert.Equal(t, "question must not be blank", errs.First().Message)
}

func TestChatRole(t *testing.T) {
	v := New()
	assert.Nil(t, v.Validate(chatRequest{Role: "user", Content: "hi"}))
	assert.Nil(t, v.Validate(chatRequest{Role: "assistant", Content: "hi"}))

	errs := v.Validate(chatRequest{Role: "system", Content: "hi"})
	require.NotNil(t, errs)
	assert.Equal(t, TagChatRole, errs.First().Tag)
}

func TestQuestionType(t *testing.T) {
	v := New()
	for _, typ := range []string{"mcq", "short", "long", "fill_blanks"} {
		assert.Nil(t, v.Validate(question{Type: typ}), typ)
	}
	assert.NotNil(t, v.Validate(question{Type: "essay"}))
}

func TestPDFName(t *testing.T) {
	v := New()
	assert.Nil(t, v.Validate(upload{Filename: "Chapter1.PDF"}))

	errs := v.ValidateWithLang(upload{Filename: "notes.docx"}, LangZH)
	require.NotNil(t, errs)
	assert.Equal(t, "仅支持 PDF 文件", errs.First().Message)
}

func TestVar(t *testing.T) {
	assert.NoError(t, New().Var("fill_blanks", TagQuestionType))
	assert.Error(t, New().Var("essay", TagQuestionType))
}
