package store

import (
	"context"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for catalog entities.
//
// Operations that touch more than one table (an entity plus its file
// relations, or a serial shift across siblings) run in a single write
// transaction. Write transactions take the database write lock when they
// begin, so concurrent serial moves in the same scope are serialized.
type Store interface {
	// Admin operations
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	GetAdmin(ctx context.Context, id string) (*domain.Admin, error)
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	UpdateAdmin(ctx context.Context, admin *domain.Admin) error
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
	CountAdmins(ctx context.Context) (int, error)

	// File operations
	CreateFile(ctx context.Context, file *domain.File) error
	GetFile(ctx context.Context, id string) (*domain.File, error)
	GetFileByKey(ctx context.Context, storageKey string) (*domain.File, error)
	ListFiles(ctx context.Context, opts ListOptions) ([]domain.File, error)
	DeleteFile(ctx context.Context, id string) error

	// Category operations. fileIDs lists attached files in display order; a
	// nil fileIDs on update leaves the attachments unchanged.
	CreateCategory(ctx context.Context, category *domain.Category, fileIDs []string) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category, fileIDs []string) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	MoveCategory(ctx context.Context, id string, to int) (*domain.Category, error)
	NormalizeCategorySerials(ctx context.Context) (int, error)

	// Category info operations (one per category)
	UpsertCategoryInfo(ctx context.Context, info *domain.CategoryInfo, fileIDs []string) error
	GetCategoryInfo(ctx context.Context, categoryID string) (*domain.CategoryInfo, error)
	DeleteCategoryInfo(ctx context.Context, categoryID string) error

	// Sub-category operations
	CreateSubCategory(ctx context.Context, sub *domain.SubCategory) error
	GetSubCategory(ctx context.Context, id string) (*domain.SubCategory, error)
	UpdateSubCategory(ctx context.Context, sub *domain.SubCategory) error
	DeleteSubCategory(ctx context.Context, id string) error
	ListSubCategories(ctx context.Context, categoryID string) ([]domain.SubCategory, error)
	MoveSubCategory(ctx context.Context, id string, to int) (*domain.SubCategory, error)
	NormalizeSubCategorySerials(ctx context.Context, categoryID string) (int, error)

	// Group operations
	CreateGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, id string) (*domain.Group, error)
	UpdateGroup(ctx context.Context, group *domain.Group) error
	DeleteGroup(ctx context.Context, id string) error
	ListGroups(ctx context.Context, categoryID string) ([]domain.Group, error)
	MoveGroup(ctx context.Context, id string, to int) (*domain.Group, error)
	NormalizeGroupSerials(ctx context.Context, categoryID string) (int, error)

	// Field operations
	CreateField(ctx context.Context, field *domain.Field) error
	GetField(ctx context.Context, id string) (*domain.Field, error)
	UpdateField(ctx context.Context, field *domain.Field) error
	DeleteField(ctx context.Context, id string) error
	ListFields(ctx context.Context, groupID string) ([]domain.Field, error)
	ListFieldsByCategory(ctx context.Context, categoryID string) ([]domain.Field, error)
	MoveField(ctx context.Context, id string, to int) (*domain.Field, error)
	NormalizeFieldSerials(ctx context.Context, groupID string) (int, error)

	// Product operations. A nil values or fileIDs on update leaves that part
	// unchanged; an empty slice clears it.
	CreateProduct(ctx context.Context, product *domain.Product, values []domain.ProductValue, fileIDs []string) error
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product, values []domain.ProductValue, fileIDs []string) error
	SetProductValues(ctx context.Context, productID string, values []domain.ProductValue) error
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	CountProducts(ctx context.Context, filter ProductFilter) (int, error)

	// Background (CMS block) operations
	CreateBackground(ctx context.Context, bg *domain.Background) error
	GetBackground(ctx context.Context, id string) (*domain.Background, error)
	UpdateBackground(ctx context.Context, bg *domain.Background) error
	DeleteBackground(ctx context.Context, id string) error
	ListBackgrounds(ctx context.Context, filter BackgroundFilter) ([]domain.Background, error)
	MoveBackground(ctx context.Context, id string, to int) (*domain.Background, error)
	NormalizeBackgroundSerials(ctx context.Context, section string) (int, error)

	// Contact form operations
	CreateContact(ctx context.Context, contact *domain.Contact) error
	GetContact(ctx context.Context, id string) (*domain.Contact, error)
	DeleteContact(ctx context.Context, id string) error
	ListContacts(ctx context.Context, filter InquiryFilter) ([]domain.Contact, error)

	// Info request operations
	CreateInfoRequest(ctx context.Context, req *domain.InfoRequest) error
	GetInfoRequest(ctx context.Context, id string) (*domain.InfoRequest, error)
	DeleteInfoRequest(ctx context.Context, id string) error
	ListInfoRequests(ctx context.Context, filter InquiryFilter) ([]domain.InfoRequest, error)

	// Reply outbox operations
	CreateReply(ctx context.Context, reply *domain.Reply) error
	GetReply(ctx context.Context, id string) (*domain.Reply, error)
	UpdateReply(ctx context.Context, reply *domain.Reply) error
	ListPendingReplies(ctx context.Context, limit int) ([]domain.Reply, error)
	CountRepliesByStatus(ctx context.Context) (map[domain.ReplyStatus]int, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  100,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 100
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID    string
	SubCategoryID string
	PublishedOnly bool
	// Search matches model name or description (case-insensitive substring).
	Search string
	// Values requires an exact value match per field ID.
	Values map[string]string
	ListOptions
}

// BackgroundFilter narrows content block listings.
type BackgroundFilter struct {
	Section    string
	ActiveOnly bool
}

// InquiryFilter narrows contact and info-request listings.
type InquiryFilter struct {
	Status domain.InquiryStatus
	ListOptions
}
