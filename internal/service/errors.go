package service

import "github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"

// invalidInput превращает ошибку пакета validation в VALIDATION_ERROR.
func invalidInput(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	return nil
}
