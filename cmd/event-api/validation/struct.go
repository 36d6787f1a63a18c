package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructValidator runs the struct tag constraints (required fields, numeric
// bounds) and records violations as field errors.
type StructValidator struct {
	validate *validator.Validate
}

func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &StructValidator{validate: v}
}

func (s *StructValidator) Validate(obj any, errs *Errors) error {
	err := s.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate %s: %w", errs.ObjectName(), err)
	}

	for _, fe := range verrs {
		code, message := describe(fe)
		errs.RejectValue(fe.Field(), code, message, rejectedValue(fe))
	}
	return nil
}

func describe(fe validator.FieldError) (string, string) {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.String {
			return "NotEmpty", "must not be empty"
		}
		return "NotNull", "must not be null"
	case "min":
		return "Min", "must be greater than or equal to " + fe.Param()
	case "max":
		return "Max", "must be less than or equal to " + fe.Param()
	default:
		return fe.Tag(), fmt.Sprintf("failed on the %q constraint", fe.Tag())
	}
}

// rejectedValue keeps an empty string as rejected but reports missing
// non-string values (zero timestamps) without one.
func rejectedValue(fe validator.FieldError) any {
	if fe.Tag() == "required" && fe.Kind() != reflect.String {
		return nil
	}
	return fe.Value()
}
