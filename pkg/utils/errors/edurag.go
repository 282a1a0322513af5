package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// EduRAG 服务代码: 21
// 错误码格式: AABBCCC

func init() {
	RegisterService(ServiceEduRAG, "edurag")
	RegisterService(ServiceThirdPartyLLM, "llm")
}

var (
	// 请求错误 (类别 01)
	ErrInvalidDocument = NewRequestErr(ServiceEduRAG, 1, "Invalid document", "文档无效")

	// 资源错误 (类别 04)
	ErrNoDocuments      = NewNotFoundErr(ServiceEduRAG, 1, "No documents found for this subject. Upload materials first.", "该科目下没有文档，请先上传资料")
	ErrSubjectNotFound  = NewNotFoundErr(ServiceEduRAG, 2, "Subject not found", "科目不存在")
	ErrDocumentNotFound = NewNotFoundErr(ServiceEduRAG, 3, "Document not found", "文档不存在")
	ErrQuizNotFound     = NewNotFoundErr(ServiceEduRAG, 4, "Quiz not found", "测验不存在")
	ErrNoteNotFound     = NewNotFoundErr(ServiceEduRAG, 5, "Note not found", "笔记不存在")

	// 生成结果为空 (422)
	ErrNoQuestionsGenerated = NewError(ServiceEduRAG, CategoryResource, 6, http.StatusUnprocessableEntity, codes.FailedPrecondition,
		"No valid questions could be generated. Try a broader topic.", "未能生成有效题目，请尝试更宽泛的主题")

	// 冲突 (类别 05)
	ErrDimensionMismatch = NewConflictErr(ServiceEduRAG, 1, "Embedding dimension does not match the subject index", "向量维度与科目索引不一致")

	// 外部能力错误 (类别 10)
	ErrEmbeddingUnavailable = NewNetworkErr(ServiceEduRAG, 1, "Embedding service unavailable", "向量化服务不可用")
	ErrGenerationFailed     = NewError(ServiceEduRAG, CategoryNetwork, 2, http.StatusBadGateway, codes.Unavailable,
		"Answer generation failed", "内容生成失败")
)
