package dberror

import (
	"net/http"

	"github.com/tansive/supporttracker/internal/common/apperrors"
)

var (
	ErrDatabase          apperrors.Error = apperrors.New("db error").SetStatusCode(http.StatusInternalServerError).SetKind(apperrors.KindInfrastructure).SetExpandError(true)
	ErrConnection        apperrors.Error = ErrDatabase.New("unable to obtain database connection")
	ErrTransaction       apperrors.Error = ErrDatabase.New("transaction failed")
	ErrRowMapping        apperrors.Error = ErrDatabase.New("unable to map row")
	ErrColumnContract    apperrors.Error = ErrDatabase.New("support_cases columns do not match the mapped columns")
	ErrAlreadyExists     apperrors.Error = ErrDatabase.New("already exists").SetStatusCode(http.StatusConflict).SetKind(apperrors.KindValidation)
	ErrNotFound          apperrors.Error = ErrDatabase.New("not found").SetStatusCode(http.StatusNotFound).SetKind(apperrors.KindNotFound)
	ErrInvalidCaseID     apperrors.Error = ErrNotFound.New("El ID proporcionado no es válido")
	ErrInvalidInput      apperrors.Error = ErrDatabase.New("invalid input").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValidation)
	ErrInvalidPagination apperrors.Error = ErrInvalidInput.New("Error de validación en los parámetros").SetStatusCode(http.StatusUnprocessableEntity)
)
