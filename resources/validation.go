package resources

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/jrsteele09/go-waterres-client/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validatePayload runs the validate tags of a create or update payload.
// Non-struct payloads such as id lists pass through.
func validatePayload(in any) error {
	v := reflect.ValueOf(in)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("%w: payload is required", apperrors.ErrValidation)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, strings.Join(msgs, ", "))
}
