package api

import (
	"time"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Request Types
// =============================================================================

// LoginRequest is the request body for admin login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the request body for changing the current admin's
// password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// CreateAdminRequest is the request body for creating an admin.
type CreateAdminRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=150"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// CategoryRequest is the request body for creating or updating a category.
// A nil FileIDs on update leaves the attached files unchanged.
type CategoryRequest struct {
	Name        string   `json:"name" validate:"required,max=150"`
	Slug        string   `json:"slug,omitempty" validate:"omitempty,slug"`
	Description string   `json:"description,omitempty"`
	SerialNo    int      `json:"serial_no,omitempty" validate:"min=0"`
	FileIDs     []string `json:"file_ids,omitempty" validate:"omitempty,dive,required"`
}

// CategoryInfoRequest is the request body for setting a category's info block.
type CategoryInfoRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description,omitempty"`
	FileIDs     []string `json:"file_ids,omitempty" validate:"omitempty,dive,required"`
}

// SubCategoryRequest is the request body for creating or updating a
// sub-category.
type SubCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=150"`
	Slug        string `json:"slug,omitempty" validate:"omitempty,slug"`
	Description string `json:"description,omitempty"`
	SerialNo    int    `json:"serial_no,omitempty" validate:"min=0"`
}

// GroupRequest is the request body for creating or updating a field group.
type GroupRequest struct {
	Name     string `json:"name" validate:"required,max=150"`
	SerialNo int    `json:"serial_no,omitempty" validate:"min=0"`
}

// FieldRequest is the request body for creating or updating a field.
type FieldRequest struct {
	Name       string   `json:"name" validate:"required,max=150"`
	Type       string   `json:"type,omitempty" validate:"omitempty,oneof=text number boolean select date"`
	Options    []string `json:"options,omitempty"`
	Unit       string   `json:"unit,omitempty" validate:"max=30"`
	Required   bool     `json:"required,omitempty"`
	Filterable bool     `json:"filterable,omitempty"`
	SerialNo   int      `json:"serial_no,omitempty" validate:"min=0"`
}

func (r FieldRequest) spec() domain.FieldSpec {
	return domain.FieldSpec{
		Name:       r.Name,
		Type:       domain.FieldType(r.Type),
		Options:    r.Options,
		Unit:       r.Unit,
		Required:   r.Required,
		Filterable: r.Filterable,
	}
}

// ProductRequest is the request body for creating or updating a product.
// Values maps field ID to raw value. A nil Values or FileIDs on update leaves
// that part unchanged.
type ProductRequest struct {
	CategoryID    string            `json:"category_id"`
	SubCategoryID string            `json:"sub_category_id,omitempty"`
	ModelName     string            `json:"model_name" validate:"required,max=150"`
	Slug          string            `json:"slug,omitempty" validate:"omitempty,slug"`
	Description   string            `json:"description,omitempty"`
	Published     bool              `json:"published"`
	Values        map[string]string `json:"values,omitempty"`
	FileIDs       []string          `json:"file_ids,omitempty" validate:"omitempty,dive,required"`
}

// ProductValuesRequest replaces every value of a product.
type ProductValuesRequest struct {
	Values map[string]string `json:"values" validate:"required"`
}

// BackgroundRequest is the request body for creating or updating a content
// block.
type BackgroundRequest struct {
	Section     string `json:"section" validate:"required,max=60"`
	Title       string `json:"title" validate:"required,max=200"`
	Subtitle    string `json:"subtitle,omitempty" validate:"max=300"`
	Description string `json:"description,omitempty"`
	FileID      string `json:"file_id,omitempty"`
	Active      bool   `json:"active"`
	SerialNo    int    `json:"serial_no,omitempty" validate:"min=0"`
}

func (r BackgroundRequest) spec() domain.BackgroundSpec {
	return domain.BackgroundSpec{
		Section:     r.Section,
		Title:       r.Title,
		Subtitle:    r.Subtitle,
		Description: r.Description,
		FileID:      r.FileID,
		Active:      r.Active,
	}
}

// MoveRequest moves an ordered entity to a new 1-based position.
type MoveRequest struct {
	SerialNo int `json:"serial_no" validate:"required,min=1"`
}

// ContactRequest is the public contact form.
type ContactRequest struct {
	FullName string `json:"full_name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,phone"`
	Company  string `json:"company,omitempty" validate:"max=150"`
	Subject  string `json:"subject,omitempty" validate:"max=200"`
	Message  string `json:"message" validate:"required,max=5000"`
}

// InfoRequestRequest is the public product inquiry form.
type InfoRequestRequest struct {
	ProductID string `json:"product_id,omitempty"`
	FullName  string `json:"full_name" validate:"required,max=150"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,phone"`
	Company   string `json:"company,omitempty" validate:"max=150"`
	Message   string `json:"message" validate:"required,max=5000"`
}

// ReplyRequest queues an email reply to an inquiry.
type ReplyRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
}

// =============================================================================
// Response Types
// =============================================================================

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Admin     domain.Admin `json:"admin"`
}

// CategoryResponse is a category with its sub-categories and info block.
type CategoryResponse struct {
	domain.Category
	SubCategories []domain.SubCategory `json:"sub_categories"`
	Info          *domain.CategoryInfo `json:"info"`
}

// ListAdminsResponse is the response for listing admins.
type ListAdminsResponse struct {
	Admins []domain.Admin `json:"admins"`
	Total  int            `json:"total"`
}

// ListCategoriesResponse is the response for listing categories.
type ListCategoriesResponse struct {
	Categories []domain.Category `json:"categories"`
	Total      int               `json:"total"`
}

// ListSubCategoriesResponse is the response for listing sub-categories.
type ListSubCategoriesResponse struct {
	SubCategories []domain.SubCategory `json:"sub_categories"`
	Total         int                  `json:"total"`
}

// ListGroupsResponse is the response for listing groups with their fields.
type ListGroupsResponse struct {
	Groups []domain.Group `json:"groups"`
	Total  int            `json:"total"`
}

// ListFieldsResponse is the response for listing fields of a group.
type ListFieldsResponse struct {
	Fields []domain.Field `json:"fields"`
	Total  int            `json:"total"`
}

// ListProductsResponse is the response for listing products.
type ListProductsResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ListBackgroundsResponse is the response for listing content blocks.
type ListBackgroundsResponse struct {
	Backgrounds []domain.Background `json:"backgrounds"`
	Total       int                 `json:"total"`
}

// ListFilesResponse is the response for listing uploaded files.
type ListFilesResponse struct {
	Files  []FileResponse `json:"files"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// FileResponse is an uploaded file with its public URL.
type FileResponse struct {
	domain.File
	URL string `json:"url"`
}

// ListContactsResponse is the response for listing contact messages.
type ListContactsResponse struct {
	Contacts []domain.Contact `json:"contacts"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ListInfoRequestsResponse is the response for listing info requests.
type ListInfoRequestsResponse struct {
	InfoRequests []domain.InfoRequest `json:"info_requests"`
	Total        int                  `json:"total"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

// NormalizeResponse reports how many rows a normalize call renumbered.
type NormalizeResponse struct {
	Updated int `json:"updated"`
}

// OutboxResponse reports queued reply counts by status.
type OutboxResponse struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// ErrorResponse is the response for errors. Fields is set for validation
// errors and maps a JSON field name to its problem.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse is the response for readiness check.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
