package biz

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edurag/internal/edurag/store"
	"github.com/kart-io/edurag/internal/model"
	"github.com/kart-io/edurag/pkg/utils/errors"
)

func TestSubjectService(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, threePages)
	cache, mr := newTestCache(t)
	svc := NewSubjectService(e.store, e.index, cache)

	subject, err := svc.Create(ctx, testTeacher, "  Biology ", "Plants and cells")
	require.NoError(t, err)
	assert.Equal(t, "Biology", subject.Name)
	assert.NotEmpty(t, subject.ID)

	name := "Biology 101"
	subject, err = svc.Update(ctx, testTeacher, subject.ID, SubjectUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Biology 101", subject.Name)
	assert.Equal(t, "Plants and cells", subject.Description)

	blank := " "
	_, err = svc.Update(ctx, testTeacher, subject.ID, SubjectUpdate{Name: &blank})
	assert.ErrorIs(t, err, errors.ErrValidationFailed)

	_, err = svc.Get(ctx, "intruder", subject.ID)
	assert.ErrorIs(t, err, errors.ErrSubjectNotFound)
	list, err := svc.List(ctx, "intruder")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = e.ingestor.Ingest(ctx, subject, "leaf.pdf", []byte("%PDF"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, testTeacher, subject.ID))
	_, err = svc.Get(ctx, testTeacher, subject.ID)
	assert.ErrorIs(t, err, errors.ErrSubjectNotFound)
	n, err := e.store.Chunks().CountBySubject(ctx, subject.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, mr.Exists("test:subject:"+subject.ID+":version"))

	assert.ErrorIs(t, svc.Delete(ctx, testTeacher, subject.ID), errors.ErrSubjectNotFound)
}

func TestDocumentService(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, threePages)
	subject := seedSubject(t, e.store, "s1")
	svc := NewDocumentService(e.store, e.index, nil)

	first, err := e.ingestor.Ingest(ctx, subject, "first.pdf", []byte("%PDF"))
	require.NoError(t, err)
	second, err := e.ingestor.Ingest(ctx, subject, "second.pdf", []byte("%PDF"))
	require.NoError(t, err)

	docs, err := svc.List(ctx, testTeacher, subject.ID)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	_, err = svc.List(ctx, "intruder", subject.ID)
	assert.ErrorIs(t, err, errors.ErrSubjectNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "intruder", first.ID), errors.ErrDocumentNotFound)

	require.NoError(t, svc.Delete(ctx, testTeacher, first.ID))
	chunks, err := e.store.Chunks().ListBySubject(ctx, subject.ID)
	require.NoError(t, err)
	require.Len(t, chunks, second.ChunkCount)
	for _, c := range chunks {
		assert.Equal(t, second.ID, c.DocumentID)
	}
}

// unreachableIndex serves queries but rejects deletes.
type unreachableIndex struct {
	store.VectorIndex
}

func (unreachableIndex) DeleteDocument(context.Context, string) error {
	return fmt.Errorf("milvus: connection refused")
}

func (unreachableIndex) DeleteSubject(context.Context, string) error {
	return fmt.Errorf("milvus: connection refused")
}

func TestDelete_VectorFailureKeepsRows(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, threePages)
	subject := seedSubject(t, e.store, "s1")
	doc, err := e.ingestor.Ingest(ctx, subject, "leaf.pdf", []byte("%PDF"))
	require.NoError(t, err)

	idx := unreachableIndex{VectorIndex: e.index}
	docs := NewDocumentService(e.store, idx, nil)
	subjects := NewSubjectService(e.store, idx, nil)

	assert.ErrorIs(t, docs.Delete(ctx, testTeacher, doc.ID), errors.ErrVectorIndex)
	_, err = e.store.Documents().Get(ctx, testTeacher, doc.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, subjects.Delete(ctx, testTeacher, subject.ID), errors.ErrVectorIndex)
	_, err = e.store.Subjects().Get(ctx, testTeacher, subject.ID)
	require.NoError(t, err)
	n, err := e.store.Chunks().CountBySubject(ctx, subject.ID)
	require.NoError(t, err)
	assert.EqualValues(t, doc.ChunkCount, n)

	// ownership is checked before any vectors are touched
	assert.ErrorIs(t, subjects.Delete(ctx, "intruder", subject.ID), errors.ErrSubjectNotFound)
}

func TestChatService(t *testing.T) {
	ctx := context.Background()
	f := newTestFactory(t)
	subject := seedSubject(t, f, "s1")
	svc := NewChatService(f)

	_, err := svc.Append(ctx, testTeacher, subject.ID, model.ChatRoleUser, "What is photosynthesis?", nil)
	require.NoError(t, err)
	sources := []model.RetrievedSource{{PageNumber: 2, Similarity: 0.91, Content: "Photosynthesis uses light."}}
	_, err = svc.Append(ctx, testTeacher, subject.ID, model.ChatRoleAssistant, "It turns light into sugar.", sources)
	require.NoError(t, err)

	_, err = svc.Append(ctx, testTeacher, subject.ID, "system", "x", nil)
	assert.ErrorIs(t, err, errors.ErrInvalidParam)
	_, err = svc.Append(ctx, testTeacher, subject.ID, model.ChatRoleUser, "  ", nil)
	assert.ErrorIs(t, err, errors.ErrInvalidParam)
	_, err = svc.Append(ctx, "intruder", subject.ID, model.ChatRoleUser, "hi", nil)
	assert.ErrorIs(t, err, errors.ErrSubjectNotFound)

	history, err := svc.List(ctx, testTeacher, subject.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.ChatRoleUser, history[0].Role)
	assert.Equal(t, model.ChatRoleAssistant, history[1].Role)
	require.Len(t, history[1].Sources, 1)
	assert.Equal(t, 2, history[1].Sources[0].PageNumber)

	n, err := svc.Clear(ctx, testTeacher, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	history, err = svc.List(ctx, testTeacher, subject.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
