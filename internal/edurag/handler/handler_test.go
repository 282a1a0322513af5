package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edurag/internal/edurag/handler"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

func TestHealth_NoAuth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "", http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "version")

	w = s.do(t, "", http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "", http.MethodGet, "/subjects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, "forged", http.MethodGet, "/subjects", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, "alice-token", http.MethodGet, "/nowhere", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errors.ErrRouteNotFound.Code, decode[errorBody](t, w).Code)
}

func TestSubjects_CRUD(t *testing.T) {
	s := newTestServer(t)

	id := s.createSubject(t, "alice-token", "  Biology  ")

	w := s.do(t, "alice-token", http.MethodGet, "/subjects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.Subject](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Biology", list[0].Name)

	// other teachers see nothing
	w = s.do(t, "bob-token", http.MethodGet, "/subjects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.Subject](t, w))

	desc := "Cells and plants"
	w = s.do(t, "alice-token", http.MethodPut, "/subjects/"+id, handler.UpdateSubjectRequest{Description: &desc})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, desc, decode[model.Subject](t, w).Description)

	blank := "   "
	w = s.do(t, "alice-token", http.MethodPut, "/subjects/"+id, handler.UpdateSubjectRequest{Name: &blank})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "bob-token", http.MethodDelete, "/subjects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, "alice-token", http.MethodDelete, "/subjects/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Subject deleted successfully", decode[handler.MessageResponse](t, w).Message)
}

func TestSubjects_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"description": "x"}},
		{"blank name", handler.CreateSubjectRequest{Name: "   "}},
		{"name too long", handler.CreateSubjectRequest{Name: strings.Repeat("a", 201)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, "alice-token", http.MethodPost, "/subjects", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, decode[errorBody](t, w).Message)
		})
	}
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	id := s.createSubject(t, "alice-token", "Biology")

	t.Run("rejects non pdf", func(t *testing.T) {
		w := s.upload(t, "alice-token", id, "notes.txt", []byte("hello"))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Only PDF files are accepted", decode[errorBody](t, w).Detail)
	})

	t.Run("requires file", func(t *testing.T) {
		w := s.upload(t, "alice-token", id, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires subject", func(t *testing.T) {
		w := s.upload(t, "alice-token", "", "bio.pdf", []byte("%PDF"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("foreign subject", func(t *testing.T) {
		w := s.upload(t, "bob-token", id, "bio.pdf", []byte("%PDF"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ingests", func(t *testing.T) {
		w := s.upload(t, "alice-token", id, "bio.pdf", []byte("%PDF"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		doc := decode[model.Document](t, w)
		assert.Equal(t, "bio.pdf", doc.Filename)
		assert.Equal(t, 2, doc.PageCount)
		assert.Positive(t, doc.ChunkCount)

		w = s.do(t, "alice-token", http.MethodGet, "/documents/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		docs := decode[[]model.Document](t, w)
		require.Len(t, docs, 1)

		w = s.do(t, "bob-token", http.MethodDelete, "/documents/"+doc.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = s.do(t, "alice-token", http.MethodDelete, "/documents/"+doc.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Document deleted successfully", decode[handler.MessageResponse](t, w).Message)
	})
}

func TestAsk(t *testing.T) {
	s := newTestServer(t)
	id := s.createSubject(t, "alice-token", "Biology")
	require.Equal(t, http.StatusOK, s.upload(t, "alice-token", id, "bio.pdf", []byte("%PDF")).Code)

	w := s.do(t, "alice-token", http.MethodPost, "/ask", handler.AskRequest{SubjectID: id, Question: "How does a plant use light?"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[map[string]any](t, w)
	assert.Equal(t, "Plants use light.", body["answer"])
	sources := body["sources"].([]any)
	require.NotEmpty(t, sources)
	first := sources[0].(map[string]any)
	assert.EqualValues(t, 2, first["page_number"])
	assert.Contains(t, first, "similarity")
	assert.Contains(t, first, "content")
	assert.NotContains(t, first, "chunk_id")

	w = s.do(t, "alice-token", http.MethodPost, "/ask", handler.AskRequest{SubjectID: id, Question: strings.Repeat("q", 2001)})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "bob-token", http.MethodPost, "/ask", handler.AskRequest{SubjectID: id, Question: "Why?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateQuiz(t *testing.T) {
	s := newTestServer(t)
	id := s.createSubject(t, "alice-token", "Biology")

	w := s.do(t, "alice-token", http.MethodPost, "/generate-quiz", handler.QuizRequest{SubjectID: id})
	assert.Equal(t, http.StatusNotFound, w.Code, "empty knowledge base")

	require.Equal(t, http.StatusOK, s.upload(t, "alice-token", id, "bio.pdf", []byte("%PDF")).Code)
	s.chat.reply("```json\n" + `[
		{"type":"mcq","question":"What does a plant absorb?","options":["light","gravity"],"correct_answer":"light"},
		{"type":"short","question":"Define photosynthesis.","correct_answer":"Turning light into sugar."}
	]` + "\n```")

	w = s.do(t, "alice-token", http.MethodPost, "/generate-quiz", handler.QuizRequest{SubjectID: id, Topic: "light"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handler.QuizResponse](t, w)
	assert.Equal(t, "Biology", resp.Subject)
	require.Len(t, resp.Questions, 1, "defaults to multiple choice only")
	assert.Equal(t, model.QuestionMCQ, resp.Questions[0].Type)

	// an omitted mcq_count keeps its default next to other counts
	short := 1
	w = s.do(t, "alice-token", http.MethodPost, "/generate-quiz", handler.QuizRequest{SubjectID: id, ShortCount: &short})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handler.QuizResponse](t, w)
	require.Len(t, resp.Questions, 2)
	assert.Equal(t, model.QuestionMCQ, resp.Questions[0].Type)
	assert.Equal(t, model.QuestionShort, resp.Questions[1].Type)

	none := 0
	w = s.do(t, "alice-token", http.MethodPost, "/generate-quiz", handler.QuizRequest{SubjectID: id, MCQCount: &none, ShortCount: &short})
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handler.QuizResponse](t, w)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, model.QuestionShort, resp.Questions[0].Type)
}

func TestGenerateNotes(t *testing.T) {
	s := newTestServer(t)
	id := s.createSubject(t, "alice-token", "Biology")
	require.Equal(t, http.StatusOK, s.upload(t, "alice-token", id, "bio.pdf", []byte("%PDF")).Code)
	s.chat.reply("# Photosynthesis\n\n- light becomes sugar")

	w := s.do(t, "alice-token", http.MethodPost, "/generate-notes", handler.NotesRequest{SubjectID: id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handler.NotesResponse](t, w)
	assert.Equal(t, "Biology", resp.Subject)
	assert.Contains(t, resp.Notes, "# Photosynthesis")
}

func TestChats(t *testing.T) {
	s := newTestServer(t)
	id := s.createSubject(t, "alice-token", "Biology")

	w := s.do(t, "alice-token", http.MethodPost, "/chats", handler.AppendChatRequest{SubjectID: id, Role: "user", Content: "Hi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, "alice-token", http.MethodPost, "/chats", handler.AppendChatRequest{
		SubjectID: id,
		Role:      "assistant",
		Content:   "Hello",
		Sources:   []model.RetrievedSource{{PageNumber: 2, Similarity: 0.8, Content: "light"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, "alice-token", http.MethodPost, "/chats", handler.AppendChatRequest{SubjectID: id, Role: "system", Content: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice-token", http.MethodGet, "/chats/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]model.ChatMessage](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, model.ChatRoleUser, history[0].Role)
	assert.Len(t, history[1].Sources, 1)

	w = s.do(t, "bob-token", http.MethodGet, "/chats/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, "alice-token", http.MethodDelete, "/chats/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chat cleared", decode[handler.MessageResponse](t, w).Message)

	w = s.do(t, "alice-token", http.MethodGet, "/chats/"+id, nil)
	assert.Empty(t, decode[[]model.ChatMessage](t, w))
}

func TestQuizLibrary(t *testing.T) {
	s := newTestServer(t)
	id := s.createSubject(t, "alice-token", "Biology")
	questions := []model.QuizQuestion{
		{Type: model.QuestionMCQ, Question: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
	}

	w := s.do(t, "alice-token", http.MethodPost, "/save-quiz", handler.SaveQuizRequest{SubjectID: id, Questions: questions})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	quiz := decode[model.Quiz](t, w)
	assert.Equal(t, "General", quiz.Title)

	title := "Week 1"
	w = s.do(t, "alice-token", http.MethodPut, "/update-quiz", handler.UpdateQuizRequest{QuizID: quiz.ID, Title: &title})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Week 1", decode[model.Quiz](t, w).Title)

	w = s.do(t, "bob-token", http.MethodGet, "/quiz/"+quiz.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, "alice-token", http.MethodDelete, "/quiz/"+quiz.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, "alice-token", http.MethodGet, "/quizzes/"+id, nil)
	assert.Empty(t, decode[[]model.Quiz](t, w))
	w = s.do(t, "alice-token", http.MethodGet, "/deleted/quizzes", nil)
	trashed := decode[[]model.Quiz](t, w)
	require.Len(t, trashed, 1)
	assert.Equal(t, "Biology", trashed[0].SubjectName)
	w = s.do(t, "alice-token", http.MethodGet, "/deleted/quizzes?subject_id="+id, nil)
	require.Len(t, decode[[]model.Quiz](t, w), 1)
	w = s.do(t, "alice-token", http.MethodGet, "/deleted/quizzes?subject_id=other", nil)
	assert.Empty(t, decode[[]model.Quiz](t, w))

	w = s.do(t, "alice-token", http.MethodPost, "/quiz/"+quiz.ID+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusActive, decode[model.Quiz](t, w).Status)

	w = s.do(t, "alice-token", http.MethodDelete, "/quiz/"+quiz.ID+"?permanent=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice-token", http.MethodDelete, "/quiz/"+quiz.ID+"?permanent=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, "alice-token", http.MethodGet, "/quiz/"+quiz.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNoteLibrary(t *testing.T) {
	s := newTestServer(t)
	id := s.createSubject(t, "alice-token", "Biology")

	w := s.do(t, "alice-token", http.MethodPost, "/save-notes", handler.SaveNoteRequest{SubjectID: id, Content: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, "alice-token", http.MethodPost, "/save-notes", handler.SaveNoteRequest{SubjectID: id, Title: "Cells", Content: "# Cells"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	note := decode[model.Note](t, w)

	content := "# Cells\n\nUpdated"
	w = s.do(t, "alice-token", http.MethodPut, "/update-note", handler.UpdateNoteRequest{NoteID: note.ID, Content: &content})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, content, decode[model.Note](t, w).Content)

	w = s.do(t, "alice-token", http.MethodGet, "/notes/"+id, nil)
	require.Len(t, decode[[]model.Note](t, w), 1)

	w = s.do(t, "alice-token", http.MethodDelete, "/note/"+note.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, "alice-token", http.MethodGet, "/deleted/notes?subject_id="+id, nil)
	trashed := decode[[]model.Note](t, w)
	require.Len(t, trashed, 1)
	assert.Equal(t, "Biology", trashed[0].SubjectName)
	w = s.do(t, "alice-token", http.MethodGet, "/deleted/notes?subject_id=other", nil)
	assert.Empty(t, decode[[]model.Note](t, w))

	w = s.do(t, "alice-token", http.MethodPost, "/note/"+note.ID+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, "alice-token", http.MethodGet, "/note/"+note.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cells", decode[model.Note](t, w).Title)
}
