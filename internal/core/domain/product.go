package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrModelNameRequired = errors.New("model name is required")
	ErrUnknownField      = errors.New("field does not belong to the product category")
)

// Product is a catalog item. Its attribute values are stored per field (EAV):
// the category defines groups, groups define fields, and each product holds
// at most one value per field.
type Product struct {
	ID            string         `json:"id"`
	CategoryID    string         `json:"category_id"`
	SubCategoryID *string        `json:"sub_category_id"`
	ModelName     string         `json:"model_name"`
	Slug          string         `json:"slug"`
	Description   string         `json:"description"`
	Published     bool           `json:"published"`
	Values        []ProductValue `json:"values"`
	Files         []File         `json:"files"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ProductValue is the value of one field for one product.
type ProductValue struct {
	ProductID string `json:"product_id" db:"product_id"`
	FieldID   string `json:"field_id" db:"field_id"`
	Value     string `json:"value" db:"value"`
}

// NewProduct creates a product in categoryID. subCategoryID may be empty.
func NewProduct(categoryID, subCategoryID, modelName, slug, description string, published bool) (*Product, error) {
	if categoryID == "" {
		return nil, ErrCategoryRequired
	}
	p := &Product{
		ID:         NewID(PrefixProduct),
		CategoryID: categoryID,
	}
	if err := p.Apply(subCategoryID, modelName, slug, description, published); err != nil {
		return nil, err
	}
	p.CreatedAt = p.UpdatedAt
	return p, nil
}

// Apply validates and sets the mutable attributes of the product.
func (p *Product) Apply(subCategoryID, modelName, slug, description string, published bool) error {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		return ErrModelNameRequired
	}
	if err := ValidateName(modelName); err != nil {
		return err
	}
	resolved, err := resolveSlug(modelName, slug)
	if err != nil {
		return err
	}

	p.SubCategoryID = nil
	if sub := strings.TrimSpace(subCategoryID); sub != "" {
		p.SubCategoryID = &sub
	}
	p.ModelName = modelName
	p.Slug = resolved
	p.Description = strings.TrimSpace(description)
	p.Published = published
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// ValueErrors collects per-field validation failures.
type ValueErrors []*FieldValueError

func (e ValueErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateProductValues validates values (field ID → raw value) against the
// fields of the product's category. Unknown field IDs are rejected, required
// fields must be present, and empty optional values are dropped. The result
// is sorted by field ID.
func ValidateProductValues(productID string, fields []Field, values map[string]string) ([]ProductValue, error) {
	byID := make(map[string]Field, len(fields))
	for _, f := range fields {
		byID[f.ID] = f
	}

	var errs ValueErrors
	out := make([]ProductValue, 0, len(values))

	for id, raw := range values {
		f, ok := byID[id]
		if !ok {
			errs = append(errs, &FieldValueError{FieldID: id, FieldName: id, Err: ErrUnknownField})
			continue
		}
		v, err := ValidateFieldValue(f, raw)
		if err != nil {
			errs = append(errs, &FieldValueError{FieldID: f.ID, FieldName: f.Name, Err: err})
			continue
		}
		if v == "" {
			continue
		}
		out = append(out, ProductValue{ProductID: productID, FieldID: id, Value: v})
	}

	for _, f := range fields {
		if _, ok := values[f.ID]; !ok && f.Required {
			errs = append(errs, &FieldValueError{FieldID: f.ID, FieldName: f.Name, Err: ErrValueRequired})
		}
	}

	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].FieldID < errs[j].FieldID })
		return nil, errs
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldID < out[j].FieldID })
	return out, nil
}
