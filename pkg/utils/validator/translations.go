package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

func (v *Validator) registerCustomTranslations() {
	if t := v.GetTranslator(LangEN); t != nil {
		registerAll(v.validate, t, map[string]string{
			TagQuestionType: "{0} must be one of mcq, short, long, fill_blanks",
			TagChatRole:     "{0} must be either user or assistant",
			TagNotBlank:     "{0} must not be blank",
			TagPDFName:      "Only PDF files are supported",
		})
	}
	if t := v.GetTranslator(LangZH); t != nil {
		registerAll(v.validate, t, map[string]string{
			TagQuestionType: "{0}必须是 mcq、short、long、fill_blanks 之一",
			TagChatRole:     "{0}必须是 user 或 assistant",
			TagNotBlank:     "{0}不能为空白",
			TagPDFName:      "仅支持 PDF 文件",
		})
	}
}

func registerAll(validate *validator.Validate, trans ut.Translator, messages map[string]string) {
	for tag, message := range messages {
		registerTranslation(validate, trans, tag, message)
	}
}

func registerTranslation(validate *validator.Validate, trans ut.Translator, tag, message string) {
	_ = validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}
