package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// =============================================================================
// Errors
// =============================================================================

var (
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name must be at most 150 characters")
	ErrSlugInvalid      = errors.New("slug must contain only lowercase letters, digits and hyphens")
	ErrCategoryRequired = errors.New("category is required")
	ErrGroupRequired    = errors.New("group is required")
	ErrTitleRequired    = errors.New("title is required")
)

const maxNameLength = 150

// =============================================================================
// Category
// =============================================================================

// Category is the top level of the catalog tree. Categories are ordered by
// SerialNo, which is 1-based and contiguous.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SerialNo    int       `json:"serial_no"`
	Files       []File    `json:"files"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategory creates a category. An empty slug is derived from the name.
func NewCategory(name, slug, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	slug, err := resolveSlug(name, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Category{
		ID:          NewID(PrefixCategory),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rename changes the category name and slug.
func (c *Category) Rename(name, slug string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	resolved, err := resolveSlug(name, slug)
	if err != nil {
		return err
	}
	c.Name = name
	c.Slug = resolved
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// CategoryInfo
// =============================================================================

// CategoryInfo is the descriptive content block shown on a category page.
// There is at most one per category.
type CategoryInfo struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Files       []File    `json:"files"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCategoryInfo creates an info block for a category.
func NewCategoryInfo(categoryID, title, description string) (*CategoryInfo, error) {
	if categoryID == "" {
		return nil, ErrCategoryRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	now := time.Now().UTC()
	return &CategoryInfo{
		ID:          NewID(PrefixCategoryInfo),
		CategoryID:  categoryID,
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply replaces the title and description of the info block.
func (i *CategoryInfo) Apply(title, description string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	i.Title = title
	i.Description = strings.TrimSpace(description)
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// SubCategory
// =============================================================================

// SubCategory narrows a category (e.g. "Diesel" under "Generators").
// Serial numbers are scoped to the parent category.
type SubCategory struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	SerialNo    int       `json:"serial_no"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSubCategory creates a sub-category under categoryID.
func NewSubCategory(categoryID, name, slug, description string) (*SubCategory, error) {
	if categoryID == "" {
		return nil, ErrCategoryRequired
	}
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	slug, err := resolveSlug(name, slug)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &SubCategory{
		ID:          NewID(PrefixSubCategory),
		CategoryID:  categoryID,
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Apply validates and sets the mutable attributes of the sub-category.
func (s *SubCategory) Apply(name, slug, description string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	resolved, err := resolveSlug(name, slug)
	if err != nil {
		return err
	}
	s.Name = name
	s.Slug = resolved
	s.Description = strings.TrimSpace(description)
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// Group
// =============================================================================

// Group is a named set of fields within a category ("Engine", "Alternator").
// Serial numbers are scoped to the parent category.
type Group struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name"`
	SerialNo   int       `json:"serial_no"`
	Fields     []Field   `json:"fields,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewGroup creates a field group under categoryID.
func NewGroup(categoryID, name string) (*Group, error) {
	if categoryID == "" {
		return nil, ErrCategoryRequired
	}
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Group{
		ID:         NewID(PrefixGroup),
		CategoryID: categoryID,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Rename changes the group name.
func (g *Group) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}
	g.Name = name
	g.UpdatedAt = time.Now().UTC()
	return nil
}

// =============================================================================
// Validation Functions (Pure)
// =============================================================================

// ValidateName validates a display name shared by catalog entities.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// resolveSlug returns slug when it is valid, or derives one from name when
// slug is empty.
func resolveSlug(name, slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(name)
		if slug == "" {
			return "", ErrSlugInvalid
		}
		return slug, nil
	}
	if !IsSlug(slug) {
		return "", ErrSlugInvalid
	}
	return slug, nil
}
