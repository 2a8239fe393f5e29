package validate

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
)

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates val against its `validate` tags. A failed `required` tag
// yields missingMsg; any other failed tag yields "Invalid fields".
func Struct(val any, missingMsg string) error {
	err := v.Struct(val)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.Internal, "Server error", err)
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return apperr.New(apperr.Validation, missingMsg)
		}
	}
	return apperr.New(apperr.Validation, "Invalid fields")
}
