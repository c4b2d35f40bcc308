package apis

import (
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/tansive/supporttracker/internal/common/httpx"
	"github.com/tansive/supporttracker/internal/supportsrv/db/models"
)

var (
	requestValidator    *validator.Validate
	universalTranslator *ut.UniversalTranslator
)

func init() {
	requestValidator = validator.New(validator.WithRequiredStructEnabled())
	requestValidator.RegisterTagNameFunc(jsonFieldName)
	requestValidator.RegisterValidation("casestatus", caseStatusValidator)
	requestValidator.RegisterValidation("casepriority", casePriorityValidator)

	var err error
	if universalTranslator, err = newUniversalTranslator(); err != nil {
		panic(err)
	}
	if err := registerTranslations(requestValidator, universalTranslator); err != nil {
		panic(err)
	}
}

// jsonFieldName reports fields by the name clients use.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func caseStatusValidator(fl validator.FieldLevel) bool {
	return models.CaseStatus(fl.Field().String()).IsValid()
}

func casePriorityValidator(fl validator.FieldLevel) bool {
	return models.CasePriority(fl.Field().String()).IsValid()
}

func statusValues() []string {
	var out []string
	for _, s := range models.CaseStatuses() {
		out = append(out, string(s))
	}
	return out
}

func priorityValues() []string {
	var out []string
	for _, p := range models.CasePriorities() {
		out = append(out, string(p))
	}
	return out
}

// validateStruct runs the request validator over s and returns its failures
// as localized field errors.
func validateStruct(trans ut.Translator, s any) []httpx.FieldError {
	err := requestValidator.Struct(s)
	if err == nil {
		return nil
	}
	validatorErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []httpx.FieldError{{Message: message(trans, ErrTypeInvalid), ErrorType: ErrTypeInvalid}}
	}
	fields := make([]httpx.FieldError, 0, len(validatorErrors))
	for _, fe := range validatorErrors {
		errType, ok := tagErrorTypes[fe.Tag()]
		var msg string
		if ok {
			msg = fe.Translate(trans)
		} else {
			errType = ErrTypeInvalid
			msg = message(trans, errType)
		}
		fields = append(fields, httpx.FieldError{
			Field:     fe.Field(),
			Message:   msg,
			ErrorType: errType,
		})
	}
	return fields
}
