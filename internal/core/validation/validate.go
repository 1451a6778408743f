package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Error Types
// =============================================================================

// FieldErrors maps a JSON field path to a human readable message.
type FieldErrors map[string]string

// Error is returned when a request fails validation.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError returns a validation error for a single field.
func NewError(field, message string) *Error {
	return &Error{Fields: FieldErrors{field: message}}
}

// =============================================================================
// Validator
// =============================================================================

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		_ = validate.RegisterValidation("slug", isSlug)
		_ = validate.RegisterValidation("phone", isPhone)
	})
	return validate
}

// Validate checks v against its `validate` struct tags. It returns *Error
// when any rule fails and nil otherwise.
func Validate(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		if _, exists := fields[path]; !exists {
			fields[path] = message(fe)
		}
	}
	return &Error{Fields: fields}
}

// FromValueErrors converts product value failures into field errors keyed
// "values.<field id>".
func FromValueErrors(errs domain.ValueErrors) *Error {
	fields := make(FieldErrors, len(errs))
	for _, fe := range errs {
		fields["values."+fe.FieldID] = fe.Err.Error()
	}
	return &Error{Fields: fields}
}

// =============================================================================
// Helpers
// =============================================================================

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must contain only lowercase letters, digits and hyphens"
	case "phone":
		return "must be a valid phone number"
	case "url", "http_url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

func isSlug(fl validator.FieldLevel) bool {
	return domain.IsSlug(fl.Field().String())
}

func isPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) < 6 || len(s) > 20 {
		return false
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+':
			if i != 0 {
				return false
			}
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 6
}
