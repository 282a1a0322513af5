// Package biz 实现 EduRAG 的业务逻辑：文档摄取、检索、问答、
// 测验与笔记生成、对话记录以及测验/笔记的保存与回收站。
//
// 所有操作都显式接收 teacherID 与 subjectID，不依赖任何进程内会话状态。
package biz
