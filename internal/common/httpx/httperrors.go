package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/tansive/supporttracker/internal/common/apperrors"
)

// Error codes carried in the failure envelope.
const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

// Messages used when an error does not carry a client facing message of its own.
const (
	MsgValidationFailed = "Error de validación en los parámetros"
	MsgInternalError    = "Error interno del servidor"
)

// FieldError is one entry of the "errors" array of a failure envelope.
type FieldError struct {
	Field     string `json:"field"`
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
}

// Error is an HTTP failure ready to be rendered as the failure envelope.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Errors     []FieldError
	Detail     string
}

type errorRsp struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Errors    []FieldError `json:"errors,omitempty"`
	ErrorCode string       `json:"error_code"`
	Detail    string       `json:"detail,omitempty"`
}

// Send writes the failure envelope. If the writer is nil, no action is taken.
func (e *Error) Send(w http.ResponseWriter) {
	if w == nil {
		return
	}
	rsp := &errorRsp{
		Success:   false,
		Message:   e.Message,
		Errors:    e.Errors,
		ErrorCode: e.Code,
		Detail:    e.Detail,
	}
	rspJson, err := json.Marshal(rsp)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Unable to parse error"))
		return
	}
	statusCode := e.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(rspJson)
}

func (e *Error) Error() string {
	return e.Message
}

// FromError classifies err into a failure envelope. Application errors are
// mapped by kind; anything else is treated as an internal failure.
func FromError(err error) *Error {
	var httperr *Error
	if errors.As(err, &httperr) {
		return httperr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		e := ErrRequestTimeout()
		e.Detail = err.Error()
		return e
	}
	appErr, ok := err.(apperrors.Error)
	if !ok {
		return &Error{
			StatusCode: http.StatusInternalServerError,
			Code:       CodeInternal,
			Message:    MsgInternalError,
			Detail:     err.Error(),
		}
	}
	switch appErr.Kind() {
	case apperrors.KindNotFound:
		return &Error{
			StatusCode: statusOr(appErr, http.StatusNotFound),
			Code:       CodeNotFound,
			Message:    appErr.Error(),
		}
	case apperrors.KindValidation:
		fields := apperrors.FieldErrors(appErr)
		if len(fields) == 0 {
			return &Error{
				StatusCode: statusOr(appErr, http.StatusBadRequest),
				Code:       CodeInvalidRequest,
				Message:    appErr.Error(),
			}
		}
		e := &Error{
			StatusCode: statusOr(appErr, http.StatusUnprocessableEntity),
			Code:       CodeValidation,
			Message:    appErr.Error(),
		}
		for _, f := range fields {
			e.Errors = append(e.Errors, FieldError{Field: f.Field, Message: f.ErrStr, ErrorType: f.Type})
		}
		return e
	default:
		return &Error{
			StatusCode: statusOr(appErr, http.StatusInternalServerError),
			Code:       CodeInternal,
			Message:    MsgInternalError,
			Detail:     appErr.SetExpandError(true).ErrorAll(),
		}
	}
}

func statusOr(err apperrors.Error, def int) int {
	if code := err.StatusCode(); code != 0 {
		return code
	}
	return def
}

// ErrReqMethodNotSupported returns an error for unsupported HTTP methods.
func ErrReqMethodNotSupported() *Error {
	return &Error{
		Message:    "request method not supported",
		Code:       CodeInvalidRequest,
		StatusCode: http.StatusMethodNotAllowed,
	}
}

// ErrUnableToParseReqData returns an error when request data cannot be parsed.
func ErrUnableToParseReqData() *Error {
	return &Error{
		Message:    "unable to parse request data",
		Code:       CodeInvalidRequest,
		StatusCode: http.StatusBadRequest,
	}
}

// ErrRequestTooLarge returns an error when the request body exceeds the limit.
func ErrRequestTooLarge() *Error {
	return &Error{
		Message:    "request body too large",
		Code:       CodeInvalidRequest,
		StatusCode: http.StatusRequestEntityTooLarge,
	}
}

// ErrApplicationError returns a generic internal failure. The optional
// argument becomes the detail.
func ErrApplicationError(detail ...string) *Error {
	e := &Error{
		Message:    MsgInternalError,
		Code:       CodeInternal,
		StatusCode: http.StatusInternalServerError,
	}
	if len(detail) > 0 {
		e.Detail = detail[0]
	}
	return e
}

// ErrNotFound returns a not found failure with the given message.
func ErrNotFound(msg string) *Error {
	return &Error{
		Message:    msg,
		Code:       CodeNotFound,
		StatusCode: http.StatusNotFound,
	}
}

// ErrValidation returns a 422 carrying the given field errors.
func ErrValidation(fields []FieldError) *Error {
	return &Error{
		Message:    MsgValidationFailed,
		Code:       CodeValidation,
		StatusCode: http.StatusUnprocessableEntity,
		Errors:     fields,
	}
}

// ErrRequestTimeout is sent when a request exceeds the server deadline.
func ErrRequestTimeout() *Error {
	return &Error{
		Message:    "request timed out",
		Code:       CodeInternal,
		StatusCode: http.StatusServiceUnavailable,
	}
}
