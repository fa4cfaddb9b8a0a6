// Package validator adapts go-playground/validator to Echo's Validator interface.
package validator

import (
	domainerrors "authsvc/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// RequestValidator validates bound request DTOs against their validate tags.
type RequestValidator struct {
	validate *validator.Validate
}

// New creates a RequestValidator.
func New() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator. Tag violations surface as the shared
// validation failure so the error middleware renders them as 400.
func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage(err.Error())
	}

	return nil
}
