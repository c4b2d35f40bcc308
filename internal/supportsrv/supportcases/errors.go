package supportcases

import (
	"net/http"

	"github.com/tansive/supporttracker/internal/common/apperrors"
)

var (
	ErrSupportCase          apperrors.Error = apperrors.New("support case error").SetStatusCode(http.StatusInternalServerError).SetExpandError(true)
	ErrMissingRequiredField apperrors.Error = ErrSupportCase.New("Todos los campos son obligatorios").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValidation)
	ErrInvalidPriority      apperrors.Error = ErrSupportCase.New("La prioridad no es válida").SetStatusCode(http.StatusBadRequest).SetKind(apperrors.KindValidation)
	ErrCreateCase           apperrors.Error = ErrSupportCase.New("Error al crear el caso de soporte")
	ErrGetCase              apperrors.Error = ErrSupportCase.New("Error al buscar el caso")
	ErrListCases            apperrors.Error = ErrSupportCase.New("Error al obtener casos")
)

// storageError keeps not found and validation outcomes as they are and
// attributes infrastructure failures to the operation that hit them.
func storageError(op apperrors.Error, err apperrors.Error) apperrors.Error {
	if err.Kind() != apperrors.KindInfrastructure {
		return err
	}
	return op.Err(err)
}
