package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePasswordStrength(fl.Field().String()) == nil
	})
	return v
}

// validateRequest checks a request body before it is sent. Failures wrap
// apperrors.ErrValidation, and ErrPasswordsDontMatch when a confirmation
// field differs.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	mismatch := false
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		if fe.Tag() == "eqfield" {
			mismatch = true
		}
	}
	if mismatch {
		return fmt.Errorf("%w: %w: %s", apperrors.ErrValidation, ErrPasswordsDontMatch, strings.Join(msgs, ", "))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(msgs, ", "))
}
