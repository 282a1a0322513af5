package validator

import (
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagQuestionType = "qtype"    // mcq | short | long | fill_blanks
	TagChatRole     = "chatrole" // user | assistant
	TagNotBlank     = "notblank" // at least one non-space character
	TagPDFName      = "pdfname"  // file name with a .pdf extension
)

var (
	questionTypes = map[string]struct{}{"mcq": {}, "short": {}, "long": {}, "fill_blanks": {}}
	chatRoles     = map[string]struct{}{"user": {}, "assistant": {}}
)

func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagQuestionType, validateQuestionType)
	_ = v.validate.RegisterValidation(TagChatRole, validateChatRole)
	_ = v.validate.RegisterValidation(TagNotBlank, validateNotBlank)
	_ = v.validate.RegisterValidation(TagPDFName, validatePDFName)
}

func validateQuestionType(fl validator.FieldLevel) bool {
	_, ok := questionTypes[fl.Field().String()]
	return ok
}

func validateChatRole(fl validator.FieldLevel) bool {
	_, ok := chatRoles[fl.Field().String()]
	return ok
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func validatePDFName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	return strings.EqualFold(filepath.Ext(value), ".pdf")
}
