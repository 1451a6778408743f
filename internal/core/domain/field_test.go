package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Field Creation Tests
// =============================================================================

func TestNewField_DefaultsToText(t *testing.T) {
	f, err := NewField("grp_1", FieldSpec{Name: "Brand"})
	require.NoError(t, err)
	assert.Equal(t, FieldText, f.Type)
	assert.Equal(t, []string{}, f.Options)
	assert.Equal(t, f.CreatedAt, f.UpdatedAt)
}

func TestNewField_Select(t *testing.T) {
	f, err := NewField("grp_1", FieldSpec{
		Name:    "Cooling",
		Type:    FieldSelect,
		Options: []string{" Air ", "Water", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Air", "Water"}, f.Options)
}

func TestNewField_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec FieldSpec
		want error
	}{
		{"unknown type", FieldSpec{Name: "X", Type: "color"}, ErrFieldTypeInvalid},
		{"select without options", FieldSpec{Name: "X", Type: FieldSelect}, ErrFieldOptionsEmpty},
		{"options on text", FieldSpec{Name: "X", Type: FieldText, Options: []string{"a"}}, ErrFieldOptionsUnused},
		{"duplicate options", FieldSpec{Name: "X", Type: FieldSelect, Options: []string{"a", "a"}}, ErrFieldOptionDup},
		{"missing name", FieldSpec{Type: FieldNumber}, ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewField("grp_1", tt.spec)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewField("", FieldSpec{Name: "X"})
	assert.ErrorIs(t, err, ErrGroupRequired)
}

// =============================================================================
// Value Validation Tests
// =============================================================================

func TestValidateFieldValue(t *testing.T) {
	number := Field{Name: "Power", Type: FieldNumber}
	boolean := Field{Name: "Canopy", Type: FieldBoolean}
	date := Field{Name: "Released", Type: FieldDate}
	sel := Field{Name: "Cooling", Type: FieldSelect, Options: []string{"Air", "Water"}}
	text := Field{Name: "Brand", Type: FieldText}

	tests := []struct {
		name    string
		field   Field
		raw     string
		want    string
		wantErr error
	}{
		{"number", number, " 20.50 ", "20.5", nil},
		{"number integer", number, "100", "100", nil},
		{"number invalid", number, "twenty", "", ErrValueNotNumber},
		{"number NaN", number, "NaN", "", ErrValueNotNumber},
		{"number infinity", number, "-Infinity", "", ErrValueNotNumber},
		{"number inf", number, "inf", "", ErrValueNotNumber},
		{"number overflow", number, "1e400", "", ErrValueNotNumber},
		{"boolean", boolean, "TRUE", "true", nil},
		{"boolean short", boolean, "0", "false", nil},
		{"boolean invalid", boolean, "yes", "", ErrValueNotBoolean},
		{"date", date, "2026-02-01", "2026-02-01", nil},
		{"date invalid", date, "01/02/2026", "", ErrValueNotDate},
		{"select", sel, "Water", "Water", nil},
		{"select invalid", sel, "Oil", "", ErrValueNotOption},
		{"text", text, " Cummins ", "Cummins", nil},
		{"empty optional", text, "  ", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFieldValue(tt.field, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateFieldValue_RequiredEmpty(t *testing.T) {
	_, err := ValidateFieldValue(Field{Name: "Brand", Type: FieldText, Required: true}, "")
	assert.ErrorIs(t, err, ErrValueRequired)
}
