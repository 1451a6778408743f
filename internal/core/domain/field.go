package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// Field Types
// =============================================================================

// FieldType determines how a product value for the field is validated.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldSelect  FieldType = "select"
	FieldDate    FieldType = "date"
)

// DateLayout is the accepted format for date field values.
const DateLayout = "2006-01-02"

const maxTextValueLength = 2000

// IsValid reports whether t is a known field type.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldText, FieldNumber, FieldBoolean, FieldSelect, FieldDate:
		return true
	}
	return false
}

var (
	ErrFieldTypeInvalid   = errors.New("field type must be one of text, number, boolean, select, date")
	ErrFieldOptionsEmpty  = errors.New("select field requires at least one option")
	ErrFieldOptionsUnused = errors.New("only select fields take options")
	ErrFieldOptionDup     = errors.New("select field options must be unique")
	ErrValueRequired      = errors.New("value is required")
	ErrValueNotNumber     = errors.New("value must be a number")
	ErrValueNotBoolean    = errors.New("value must be true or false")
	ErrValueNotDate       = errors.New("value must be a date in YYYY-MM-DD format")
	ErrValueNotOption     = errors.New("value is not one of the field options")
	ErrValueTooLong       = errors.New("value must be at most 2000 characters")
)

// =============================================================================
// Field
// =============================================================================

// Field is one attribute definition in a group ("Rated power", unit "kVA").
// Serial numbers are scoped to the parent group.
type Field struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"group_id"`
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	Options    []string  `json:"options"`
	Unit       string    `json:"unit"`
	Required   bool      `json:"required"`
	Filterable bool      `json:"filterable"`
	SerialNo   int       `json:"serial_no"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FieldSpec carries the mutable attributes of a field.
type FieldSpec struct {
	Name       string
	Type       FieldType
	Options    []string
	Unit       string
	Required   bool
	Filterable bool
}

// NewField creates a field under groupID.
func NewField(groupID string, spec FieldSpec) (*Field, error) {
	if groupID == "" {
		return nil, ErrGroupRequired
	}
	f := &Field{
		ID:      NewID(PrefixField),
		GroupID: groupID,
	}
	if err := f.Apply(spec); err != nil {
		return nil, err
	}
	f.CreatedAt = f.UpdatedAt
	return f, nil
}

// Apply validates spec and copies it onto the field.
func (f *Field) Apply(spec FieldSpec) error {
	name := strings.TrimSpace(spec.Name)
	if err := ValidateName(name); err != nil {
		return err
	}
	if spec.Type == "" {
		spec.Type = FieldText
	}
	if !spec.Type.IsValid() {
		return ErrFieldTypeInvalid
	}
	options, err := normalizeOptions(spec.Type, spec.Options)
	if err != nil {
		return err
	}

	f.Name = name
	f.Type = spec.Type
	f.Options = options
	f.Unit = strings.TrimSpace(spec.Unit)
	f.Required = spec.Required
	f.Filterable = spec.Filterable
	f.UpdatedAt = time.Now().UTC()
	return nil
}

func normalizeOptions(t FieldType, options []string) ([]string, error) {
	cleaned := make([]string, 0, len(options))
	for _, o := range options {
		if o = strings.TrimSpace(o); o != "" {
			cleaned = append(cleaned, o)
		}
	}
	if t != FieldSelect {
		if len(cleaned) > 0 {
			return nil, ErrFieldOptionsUnused
		}
		return []string{}, nil
	}
	if len(cleaned) == 0 {
		return nil, ErrFieldOptionsEmpty
	}
	seen := make(map[string]bool, len(cleaned))
	for _, o := range cleaned {
		if seen[o] {
			return nil, ErrFieldOptionDup
		}
		seen[o] = true
	}
	return cleaned, nil
}

// =============================================================================
// Value Validation (Pure)
// =============================================================================

// ValidateFieldValue checks raw against the field type and returns the
// canonical stored form. Empty values are rejected only for required fields;
// an empty optional value normalizes to "".
func ValidateFieldValue(f Field, raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		if f.Required {
			return "", ErrValueRequired
		}
		return "", nil
	}

	switch f.Type {
	case FieldNumber:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return "", ErrValueNotNumber
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	case FieldBoolean:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", ErrValueNotBoolean
		}
		return strconv.FormatBool(b), nil
	case FieldDate:
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return "", ErrValueNotDate
		}
		return d.Format(DateLayout), nil
	case FieldSelect:
		if !slices.Contains(f.Options, v) {
			return "", ErrValueNotOption
		}
		return v, nil
	default:
		if len([]rune(v)) > maxTextValueLength {
			return "", ErrValueTooLong
		}
		return v, nil
	}
}

// FieldValueError ties a value validation failure to its field.
type FieldValueError struct {
	FieldID   string
	FieldName string
	Err       error
}

func (e *FieldValueError) Error() string {
	return fmt.Sprintf("field %q: %v", e.FieldName, e.Err)
}

func (e *FieldValueError) Unwrap() error {
	return e.Err
}
