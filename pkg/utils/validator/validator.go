// Package validator wraps go-playground/validator with translated messages
// and the custom rules used by EduRAG request types.
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
	zhtrans "github.com/go-playground/validator/v10/translations/zh"
)

// Supported languages.
const (
	LangEN = "en"
	LangZH = "zh"
)

// Validator validates structs and translates failures.
type Validator struct {
	validate *validator.Validate
	uni      *ut.UniversalTranslator
	trans    map[string]ut.Translator
}

var (
	global   *Validator
	globalMu sync.RWMutex
)

// Global returns the process-wide validator.
func Global() *Validator {
	globalMu.RLock()
	g := global
	globalMu.RUnlock()
	if g != nil {
		return g
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = New()
	}
	return global
}

// SetGlobal replaces the process-wide validator.
func SetGlobal(v *Validator) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = v
}

// New creates a validator with English and Chinese translations.
func New() *Validator {
	enLocale := en.New()
	zhLocale := zh.New()
	uni := ut.New(enLocale, enLocale, zhLocale)

	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		uni:      uni,
		trans:    make(map[string]ut.Translator, 2),
	}

	// report json names instead of Go field names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if t, ok := uni.GetTranslator(LangEN); ok {
		_ = entrans.RegisterDefaultTranslations(v.validate, t)
		v.trans[LangEN] = t
	}
	if t, ok := uni.GetTranslator(LangZH); ok {
		_ = zhtrans.RegisterDefaultTranslations(v.validate, t)
		v.trans[LangZH] = t
	}

	v.registerCustomRules()
	v.registerCustomTranslations()
	return v
}

// GetTranslator returns the translator for lang, or nil.
func (v *Validator) GetTranslator(lang string) ut.Translator {
	return v.trans[lang]
}

// Validate validates s and returns English messages.
func (v *Validator) Validate(s interface{}) *ValidationErrors {
	return v.ValidateWithLang(s, LangEN)
}

// ValidateWithLang validates s and returns messages in lang.
func (v *Validator) ValidateWithLang(s interface{}, lang string) *ValidationErrors {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationErrors(NewValidationError("", "", err.Error()))
	}

	trans := v.GetTranslator(lang)
	if trans == nil {
		trans = v.GetTranslator(LangEN)
	}

	errs := &ValidationErrors{}
	for _, fe := range fieldErrs {
		msg := fe.Error()
		if trans != nil {
			msg = fe.Translate(trans)
		}
		errs.Append(NewValidationError(fe.Field(), fe.Tag(), msg))
	}
	return errs
}

// Var validates a single value against tag.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// Struct validates s with the global validator.
func Struct(s interface{}) *ValidationErrors {
	return Global().Validate(s)
}
