package apis

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
)

// error_type values reported in field errors.
const (
	ErrTypeMissing         = "missing"
	ErrTypeIntParsing      = "int_parsing"
	ErrTypeDatetimeParsing = "datetime_parsing"
	ErrTypeGreaterThan     = "greater_than"
	ErrTypeLessThanEqual   = "less_than_equal"
	ErrTypeStringTooLong   = "string_too_long"
	ErrTypeEnum            = "enum"
	ErrTypeUUIDParsing     = "uuid_parsing"
	ErrTypeInvalid         = "value_error"
)

const defaultLocale = "es"

var supportedLanguages = []language.Tag{language.Spanish, language.English}

var languageMatcher = language.NewMatcher(supportedLanguages)

var messages = map[string]map[string]string{
	"es": {
		ErrTypeMissing:         "Campo requerido",
		ErrTypeIntParsing:      "Debe ser un número entero",
		ErrTypeDatetimeParsing: "Debe ser una fecha válida",
		ErrTypeGreaterThan:     "Debe ser mayor que {0}",
		ErrTypeLessThanEqual:   "Debe ser menor o igual a {0}",
		ErrTypeStringTooLong:   "El texto no puede exceder los {0} caracteres",
		ErrTypeEnum:            "Debe ser uno de: {0}",
		ErrTypeUUIDParsing:     "Debe ser un UUID válido",
		ErrTypeInvalid:         "Valor inválido",
	},
	"en": {
		ErrTypeMissing:         "Field required",
		ErrTypeIntParsing:      "Must be an integer",
		ErrTypeDatetimeParsing: "Must be a valid date",
		ErrTypeGreaterThan:     "Must be greater than {0}",
		ErrTypeLessThanEqual:   "Must be less than or equal to {0}",
		ErrTypeStringTooLong:   "Text must not exceed {0} characters",
		ErrTypeEnum:            "Must be one of: {0}",
		ErrTypeUUIDParsing:     "Must be a valid UUID",
		ErrTypeInvalid:         "Invalid value",
	},
}

// validator tag to error_type
var tagErrorTypes = map[string]string{
	"required":     ErrTypeMissing,
	"gt":           ErrTypeGreaterThan,
	"lte":          ErrTypeLessThanEqual,
	"max":          ErrTypeStringTooLong,
	"casestatus":   ErrTypeEnum,
	"casepriority": ErrTypeEnum,
	"uuid":         ErrTypeUUIDParsing,
}

func newUniversalTranslator() (*ut.UniversalTranslator, error) {
	uni := ut.New(es.New(), es.New(), en.New())
	for locale, msgs := range messages {
		trans, found := uni.GetTranslator(locale)
		if !found {
			return nil, fmt.Errorf("no translator for locale %s", locale)
		}
		for key, text := range msgs {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("adding %s translation %s: %w", locale, key, err)
			}
		}
	}
	return uni, nil
}

// registerTranslations makes FieldError.Translate produce the messages of the
// error_type each validator tag maps to.
func registerTranslations(v *validator.Validate, uni *ut.UniversalTranslator) error {
	for locale := range messages {
		trans, _ := uni.GetTranslator(locale)
		for tag, errType := range tagErrorTypes {
			errType := errType
			err := v.RegisterTranslation(tag, trans,
				func(ut.Translator) error { return nil },
				func(t ut.Translator, fe validator.FieldError) string {
					msg, err := t.T(errType, translationParam(fe))
					if err != nil {
						return fe.Error()
					}
					return msg
				})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func translationParam(fe validator.FieldError) string {
	switch fe.Tag() {
	case "casestatus":
		return strings.Join(statusValues(), ", ")
	case "casepriority":
		return strings.Join(priorityValues(), ", ")
	}
	return fe.Param()
}

// localeFor picks the response language from Accept-Language.
func localeFor(r *http.Request) string {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil || len(tags) == 0 {
		return defaultLocale
	}
	tag, _, _ := languageMatcher.Match(tags...)
	base, _ := tag.Base()
	if _, ok := messages[base.String()]; !ok {
		return defaultLocale
	}
	return base.String()
}

func translatorFor(r *http.Request) ut.Translator {
	trans, _ := universalTranslator.GetTranslator(localeFor(r))
	return trans
}

// message renders the message of errType in the translator's locale.
func message(trans ut.Translator, errType string, params ...string) string {
	msg, err := trans.T(errType, params...)
	if err != nil {
		return errType
	}
	return msg
}
