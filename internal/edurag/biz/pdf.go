package biz

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/kart-io/edurag/pkg/utils/errors"
)

// Page 是 PDF 的一页文本，Number 从 1 开始。
type Page struct {
	Number int
	Text   string
}

// Extractor 从上传内容中提取逐页文本。
type Extractor interface {
	Extract(data []byte) ([]Page, error)
}

// PDFExtractor 使用 ledongthuc/pdf 提取文本。
type PDFExtractor struct{}

var _ Extractor = PDFExtractor{}

// Extract 返回全部页面，无文本的页面 Text 为空。无法解析时返回 ErrInvalidDocument。
func (PDFExtractor) Extract(data []byte) (pages []Page, err error) {
	// 解析器遇到损坏的交叉引用表可能直接 panic
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = errors.ErrInvalidDocument.WithCause(fmt.Errorf("pdf parser panic: %v", r))
		}
	}()

	if len(data) == 0 {
		return nil, errors.ErrInvalidDocument.WithMessage("uploaded file is empty")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.ErrInvalidDocument.WithCause(err)
	}

	n := reader.NumPage()
	if n == 0 {
		return nil, errors.ErrInvalidDocument.WithMessage("PDF has no pages")
	}

	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		p := reader.Page(i)
		page := Page{Number: i}
		if !p.V.IsNull() {
			text, err := p.GetPlainText(nil)
			if err == nil {
				page.Text = text
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}
