package biz

import (
	"strings"
	"unicode/utf8"

	"github.com/kart-io/edurag/internal/pkg/textutil"
)

// Chunker 按字符数切分文本，在词边界处断开，相邻块共享 Overlap 个字符以内的尾部词。
// 单个词超过 Size 时强制切开。相同输入总是得到相同输出。
type Chunker struct {
	Size    int
	Overlap int
}

// NewChunker 创建切分器，非法参数回落到默认值 800/120。
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 800
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 8
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// PageChunk 是带页码的文本块。Ordinal 为文档内序号。
type PageChunk struct {
	PageNumber int
	Ordinal    int
	Content    string
}

// SplitPages 逐页切分，空白页不产生任何块。
func (c *Chunker) SplitPages(pages []Page) []PageChunk {
	var out []PageChunk
	for _, p := range pages {
		for _, content := range c.Split(p.Text) {
			out = append(out, PageChunk{
				PageNumber: p.Number,
				Ordinal:    len(out),
				Content:    content,
			})
		}
	}
	return out
}

// Split 切分一段文本。
func (c *Chunker) Split(text string) []string {
	words := c.words(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(words) {
		end, length := start, 0
		for end < len(words) {
			l := utf8.RuneCountInString(words[end])
			if end > start {
				l++ // separator
			}
			if end > start && length+l > c.Size {
				break
			}
			length += l
			end++
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}

		// 回退若干尾部词作为下一块的开头，至少前进一个词
		next, overlap := end, 0
		for next > start+1 {
			l := utf8.RuneCountInString(words[next-1]) + 1
			if overlap+l > c.Overlap {
				break
			}
			overlap += l
			next--
		}
		start = next
	}
	return chunks
}

func (c *Chunker) words(text string) []string {
	fields := strings.Fields(textutil.NormalizeSpace(text))
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		for utf8.RuneCountInString(w) > c.Size {
			r := []rune(w)
			out = append(out, string(r[:c.Size]))
			w = string(r[c.Size:])
		}
		out = append(out, w)
	}
	return out
}
