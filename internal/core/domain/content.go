package domain

import (
	"errors"
	"strings"
	"time"
)

var ErrSectionRequired = errors.New("section is required")

// Background is a CMS content block rendered on the storefront, typically a
// hero image with a heading. Blocks are grouped by Section ("home-hero",
// "about") and ordered by SerialNo within their section.
type Background struct {
	ID          string    `json:"id"`
	Section     string    `json:"section"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Description string    `json:"description"`
	FileID      *string   `json:"file_id"`
	File        *File     `json:"file,omitempty"`
	SerialNo    int       `json:"serial_no"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BackgroundSpec carries the mutable attributes of a background block.
type BackgroundSpec struct {
	Section     string
	Title       string
	Subtitle    string
	Description string
	FileID      string
	Active      bool
}

// NewBackground creates a content block.
func NewBackground(spec BackgroundSpec) (*Background, error) {
	b := &Background{ID: NewID(PrefixBackground)}
	if err := b.Apply(spec); err != nil {
		return nil, err
	}
	b.CreatedAt = b.UpdatedAt
	return b, nil
}

// Apply validates spec and copies it onto the block. The section is stored in
// slug form.
func (b *Background) Apply(spec BackgroundSpec) error {
	section := Slugify(spec.Section)
	if section == "" {
		return ErrSectionRequired
	}
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return ErrTitleRequired
	}

	b.Section = section
	b.Title = title
	b.Subtitle = strings.TrimSpace(spec.Subtitle)
	b.Description = strings.TrimSpace(spec.Description)
	b.FileID = nil
	if id := strings.TrimSpace(spec.FileID); id != "" {
		b.FileID = &id
	}
	b.Active = spec.Active
	b.UpdatedAt = time.Now().UTC()
	return nil
}
