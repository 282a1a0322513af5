// Package textutil 提供检索与生成相关的文本处理工具函数。
package textutil

import (
	"errors"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CosineSimilarity 计算两个向量的余弦相似度。
// 返回值范围为 [-1, 1]，长度不一致或零向量返回 0。
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Clamp01 将相似度限制在 [0, 1]。
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Round 四舍五入到指定小数位。
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// TruncateString 截断字符串到指定的最大 Unicode 字符数。
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

// Preview 返回前 maxLen 个字符并追加省略号。
func Preview(s string, maxLen int) string {
	return TruncateString(s, maxLen) + "..."
}

// NormalizeSpace 将连续空白折叠为单个空格并去除首尾空白。
func NormalizeSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// IsBlank 判断字符串是否只含空白。
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ErrNoJSONArray 表示文本中找不到 JSON 数组。
var ErrNoJSONArray = errors.New("no JSON array found")

// ExtractJSONArray 截取第一个 '[' 到最后一个 ']' 之间的内容（含括号）。
// 会先去掉 Markdown 代码块围栏。
func ExtractJSONArray(s string) (string, error) {
	s = StripCodeFence(s)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONArray
	}
	return s[start : end+1], nil
}

// StripCodeFence 去掉 ```json ... ``` 形式的代码块围栏。
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
