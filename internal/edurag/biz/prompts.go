package biz

import (
	"fmt"
	"strings"

	"github.com/kart-io/edurag/internal/model"
)

const (
	// formattingRules 追加在自由文本类提示词之后。JSON 类提示词不追加，以免干扰解析。
	formattingRules = "\n\nFORMATTING RULES:\n" +
		"- Use clear Markdown headers (##, ###).\n" +
		"- Use numbered lists (1., 2., 3.) for main points.\n" +
		"- **Bold** key terms and important concepts.\n" +
		"- Keep explanations concise and avoid long paragraphs."

	answerSystemPrompt = "You are a helpful teaching assistant. Answer the teacher's question " +
		"using ONLY the provided context from their course materials. " +
		"If the context does not contain the answer, say clearly that it was not found in the materials. " +
		"Do not invent facts. Use clear, professional language suitable for educators." + formattingRules

	noContextFound = "No relevant context was found in the uploaded materials for this subject."

	quizSystemPrompt = "You are an expert educational assessment creator. Generate questions " +
		"EXCLUSIVELY from the provided topic and context. Return ONLY valid JSON: an array of objects.\n\n" +
		"QUESTION FORMATS:\n" +
		"1. mcq: {\"type\": \"mcq\", \"question\": \"...\", \"options\": [\"...\", \"...\", \"...\", \"...\"], \"correct_answer\": \"...\"}\n" +
		"2. short: {\"type\": \"short\", \"question\": \"...\", \"correct_answer\": \"...\"}\n" +
		"3. long: {\"type\": \"long\", \"question\": \"...\", \"correct_answer\": \"...\"}\n" +
		"4. fill_blanks: {\"type\": \"fill_blanks\", \"question\": \"...\", \"correct_answer\": \"...\"}\n\n" +
		"RULES:\n" +
		"- mcq questions have exactly 4 options and correct_answer is the full text of one of them.\n" +
		"- For short and long questions correct_answer is a brief sample answer or the key points.\n" +
		"- For fill_blanks put '____' in the question where the answer goes.\n" +
		"- If a topic is given, every question must be about that topic.\n" +
		"- Return ONLY the JSON array, with no explanation before or after it."

	notesSystemPrompt = "You are an expert academic content creator. Turn teaching materials into " +
		"well-structured, scannable study notes in Markdown.\n\n" +
		"STRUCTURE:\n" +
		"1. Start with a single '#' title based on the topic.\n" +
		"2. Use '##' section headers and a '---' rule after each major section.\n" +
		"3. Open each section with a short definition of its core concept.\n" +
		"4. Use numbered lists for main points and '-' sub-bullets for details.\n" +
		"5. **Bold** important terms; use code blocks for formulas or syntax.\n" +
		"6. End with a '## Key Takeaways' checklist.\n" +
		"If a topic is given, cover ONLY that topic and ignore unrelated context."

	// TruncationMarker 追加在因输出长度上限被截断的笔记末尾。
	TruncationMarker = "\n\n---\n\n> **Note:** these notes were cut short because the model reached its output limit. " +
		"Generate notes for a narrower topic to get the rest."

	defaultQuizQuery  = "key concepts and important topics"
	defaultNotesQuery = "all key concepts, definitions, and important topics"
)

// FormatContext 将检索结果格式化为 "[Source i, Page p]" 块，块之间以分隔线连接。
func FormatContext(sources []model.RetrievedSource) string {
	parts := make([]string, len(sources))
	for i, s := range sources {
		parts[i] = fmt.Sprintf("[Source %d, Page %d]\n%s", i+1, s.PageNumber, s.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func answerPrompt(context, question string) string {
	if context == "" {
		context = noContextFound
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, question)
}

func quizPrompt(context string, req *QuizRequest) string {
	var b strings.Builder
	b.WriteString("Based on the following context, generate exactly these questions:\n")
	if req.Topic != "" {
		fmt.Fprintf(&b, "\nAll questions MUST be strictly about the topic: %q.\n", req.Topic)
	}
	if req.Instructions != "" {
		fmt.Fprintf(&b, "\nAdditional instructions from the teacher: %s\n", req.Instructions)
	}
	fmt.Fprintf(&b, "\n- %d multiple choice questions (mcq)\n", req.MCQCount)
	fmt.Fprintf(&b, "- %d short answer questions (short)\n", req.ShortCount)
	fmt.Fprintf(&b, "- %d long answer questions (long)\n", req.LongCount)
	fmt.Fprintf(&b, "- %d fill-in-the-blank questions (fill_blanks)\n", req.FillBlanksCount)
	fmt.Fprintf(&b, "\nContext:\n%s\n\nReturn the JSON array now.", context)
	return b.String()
}

func notesPrompt(context, topic string) string {
	var b strings.Builder
	b.WriteString("Based on the following teaching material, generate comprehensive study notes.\n")
	if topic != "" {
		fmt.Fprintf(&b, "\nThe notes MUST be strictly about the topic: %q.\n", topic)
	}
	fmt.Fprintf(&b, "\nContext:\n%s\n\nGenerate the notes now.", context)
	return b.String()
}

// quizQuery 组合检索用的查询文本。
func quizQuery(topic, instructions string) string {
	q := strings.TrimSpace(topic)
	if q == "" {
		q = defaultQuizQuery
	}
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		q += " (" + instructions + ")"
	}
	return q
}

func notesQuery(topic string) string {
	if q := strings.TrimSpace(topic); q != "" {
		return q
	}
	return defaultNotesQuery
}

