package api

import (
	"net/http"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/api/openapi"
)

// newAPIDocument registers every route served by Routes except the SPA
// fallback and the operational endpoints (/metrics, /openapi.json).
func newAPIDocument(version string) *openapi.Generator {
	g := openapi.NewGenerator(openapi.WithVersion(version))

	// Collections

	g.RegisterResource(openapi.ResourceInfo{
		Name:           "categories",
		Model:          CategoryResponse{},
		Request:        CategoryRequest{},
		List:           ListCategoriesResponse{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
		Ordered:        true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "sub-categories",
		Parent:         "categories",
		Model:          domain.SubCategory{},
		Request:        SubCategoryRequest{},
		List:           ListSubCategoriesResponse{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
		Ordered:        true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "groups",
		Parent:         "categories",
		Model:          domain.Group{},
		Request:        GroupRequest{},
		List:           ListGroupsResponse{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
		Ordered:        true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "fields",
		Parent:         "groups",
		Model:          domain.Field{},
		Request:        FieldRequest{},
		List:           ListFieldsResponse{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
		Ordered:        true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "products",
		Model:          domain.Product{},
		Request:        ProductRequest{},
		List:           ListProductsResponse{},
		Filters:        []string{"category_id", "sub_category_id", "q", "published"},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "backgrounds",
		Model:          domain.Background{},
		Request:        BackgroundRequest{},
		List:           ListBackgroundsResponse{},
		Filters:        []string{"section", "active"},
		Scope:          "section",
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsUpdate: true,
		SupportsDelete: true,
		Ordered:        true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "files",
		Model:          FileResponse{},
		List:           ListFilesResponse{},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsDelete: true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "contacts",
		Model:          domain.Contact{},
		Request:        ContactRequest{},
		List:           ListContactsResponse{},
		Filters:        []string{"status"},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsDelete: true,
		PublicWrite:    true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "info-requests",
		Model:          domain.InfoRequest{},
		Request:        InfoRequestRequest{},
		List:           ListInfoRequestsResponse{},
		Filters:        []string{"status"},
		SupportsList:   true,
		SupportsGet:    true,
		SupportsCreate: true,
		SupportsDelete: true,
		PublicWrite:    true,
	})
	g.RegisterResource(openapi.ResourceInfo{
		Name:           "admins",
		Model:          domain.Admin{},
		Request:        CreateAdminRequest{},
		List:           ListAdminsResponse{},
		SupportsList:   true,
		SupportsCreate: true,
	})

	// Single routes

	for _, op := range []openapi.OperationInfo{
		{
			Method: http.MethodGet, Path: "/health", OperationID: "health",
			Summary: "Liveness check", Tag: "System",
			Response: HealthResponse{}, Public: true,
		},
		{
			Method: http.MethodGet, Path: "/ready", OperationID: "ready",
			Summary: "Readiness check", Tag: "System",
			Response: ReadyResponse{}, Failures: []int{http.StatusServiceUnavailable}, Public: true,
		},
		{
			Method: http.MethodPost, Path: "/api/v1/auth/login", OperationID: "login",
			Summary: "Exchange admin credentials for a token", Tag: "Auth",
			Request: LoginRequest{}, Response: LoginResponse{},
			Failures: []int{http.StatusBadRequest, http.StatusUnauthorized}, Public: true,
		},
		{
			Method: http.MethodGet, Path: "/api/v1/auth/me", OperationID: "getCurrentAdmin",
			Summary: "Get the signed-in admin", Tag: "Auth",
			Response: domain.Admin{}, Failures: []int{http.StatusUnauthorized},
		},
		{
			Method: http.MethodPut, Path: "/api/v1/auth/password", OperationID: "changePassword",
			Summary: "Change the signed-in admin's password", Tag: "Auth",
			Request: ChangePasswordRequest{}, Status: http.StatusNoContent,
			Failures: []int{http.StatusBadRequest, http.StatusUnauthorized},
		},
		{
			Method: http.MethodGet, Path: "/api/v1/categories/by-slug/{slug}", OperationID: "getCategoryBySlug",
			Summary: "Get a category by slug", Tag: "Category",
			Response: CategoryResponse{}, Failures: []int{http.StatusNotFound}, Public: true,
		},
		{
			Method: http.MethodGet, Path: "/api/v1/categories/{id}/info", OperationID: "getCategoryInfo",
			Summary: "Get the info block of a category", Tag: "Category",
			Response: domain.CategoryInfo{}, Failures: []int{http.StatusNotFound}, Public: true,
		},
		{
			Method: http.MethodPut, Path: "/api/v1/categories/{id}/info", OperationID: "putCategoryInfo",
			Summary: "Create or replace the info block of a category", Tag: "Category",
			Request: CategoryInfoRequest{}, Response: domain.CategoryInfo{},
			Failures: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodDelete, Path: "/api/v1/categories/{id}/info", OperationID: "deleteCategoryInfo",
			Summary: "Delete the info block of a category", Tag: "Category",
			Status: http.StatusNoContent, Failures: []int{http.StatusNotFound},
		},
		{
			Method: http.MethodGet, Path: "/api/v1/products/by-slug/{slug}", OperationID: "getProductBySlug",
			Summary: "Get a product by slug", Tag: "Product",
			Response: domain.Product{}, Failures: []int{http.StatusNotFound}, Public: true,
		},
		{
			Method: http.MethodPut, Path: "/api/v1/products/{id}/values", OperationID: "setProductValues",
			Summary: "Replace every field value of a product", Tag: "Product",
			Request: ProductValuesRequest{}, Response: domain.Product{},
			Failures: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodPost, Path: "/api/v1/files", OperationID: "uploadFile",
			Summary: "Upload a media file", Tag: "File",
			Upload: "file", Response: FileResponse{}, Status: http.StatusCreated,
			Failures: []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType},
		},
		{
			Method: http.MethodGet, Path: "/media/{key}", OperationID: "getMedia",
			Summary: "Download file content by storage key (the key may contain slashes)", Tag: "File",
			ContentType: "application/octet-stream", Failures: []int{http.StatusNotFound}, Public: true,
		},
		{
			Method: http.MethodPost, Path: "/api/v1/contacts/{id}/replies", OperationID: "replyToContact",
			Summary: "Queue an email reply to a contact message", Tag: "Contact",
			Request: ReplyRequest{}, Response: domain.Reply{}, Status: http.StatusAccepted,
			Failures: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodPost, Path: "/api/v1/info-requests/{id}/replies", OperationID: "replyToInfoRequest",
			Summary: "Queue an email reply to an info request", Tag: "InfoRequest",
			Request: ReplyRequest{}, Response: domain.Reply{}, Status: http.StatusAccepted,
			Failures: []int{http.StatusBadRequest, http.StatusNotFound},
		},
		{
			Method: http.MethodGet, Path: "/api/v1/outbox", OperationID: "getOutbox",
			Summary: "Count queued replies by status", Tag: "Outbox",
			Response: OutboxResponse{},
		},
		{
			Method: http.MethodPost, Path: "/api/v1/outbox/{id}/retry", OperationID: "retryReply",
			Summary: "Re-queue a failed reply", Tag: "Outbox",
			Response: domain.Reply{}, Status: http.StatusAccepted,
			Failures: []int{http.StatusNotFound, http.StatusConflict},
		},
	} {
		g.RegisterOperation(op)
	}

	return g
}
