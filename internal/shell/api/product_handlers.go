package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
)

var errCategoryImmutable = errors.New("the category of a product cannot be changed")

// =============================================================================
// Product Handlers
// =============================================================================

// handleListProducts lists products. Query parameters: category_id,
// sub_category_id, q (model name or description search), field[<field id>]
// (value match after canonicalization), limit and offset. Anonymous callers only see
// published products.
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.ProductFilter{
		CategoryID:    query.Get("category_id"),
		SubCategoryID: query.Get("sub_category_id"),
		Search:        strings.TrimSpace(query.Get("q")),
		PublishedOnly: !isAdmin(r) || query.Get("published") == "true",
		ListOptions:   listOptions(r),
	}
	for key, vals := range query {
		if id, ok := strings.CutPrefix(key, "field["); ok && strings.HasSuffix(id, "]") && len(vals) > 0 {
			if filter.Values == nil {
				filter.Values = make(map[string]string)
			}
			filter.Values[strings.TrimSuffix(id, "]")] = vals[0]
		}
	}
	if !h.canonicalFilterValues(r.Context(), w, filter.Values) {
		return
	}

	products, err := h.store.ListProducts(r.Context(), filter)
	if err != nil {
		h.writeStoreError(w, err, "product", "list")
		return
	}
	total, err := h.store.CountProducts(r.Context(), filter)
	if err != nil {
		h.writeStoreError(w, err, "product", "count")
		return
	}

	h.writeJSON(w, http.StatusOK, ListProductsResponse{
		Products: products,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// canonicalFilterValues rewrites field filter values into the stored form so
// that "100.0" matches a stored "100".
func (h *Handler) canonicalFilterValues(ctx context.Context, w http.ResponseWriter, values map[string]string) bool {
	for id, raw := range values {
		field, err := h.store.GetField(ctx, id)
		if err != nil {
			if isNotFound(err) {
				h.writeError(w, http.StatusBadRequest, "unknown filter field "+id, "validation_error")
				return false
			}
			h.writeStoreError(w, err, "field", "get")
			return false
		}
		canonical, err := domain.ValidateFieldValue(*field, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "field["+id+"]: "+err.Error(), "validation_error")
			return false
		}
		values[id] = canonical
	}
	return true
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	h.writeVisibleProduct(w, r, product, err)
}

func (h *Handler) handleGetProductBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
	h.writeVisibleProduct(w, r, product, err)
}

// writeVisibleProduct hides unpublished products from anonymous callers as
// if they did not exist.
func (h *Handler) writeVisibleProduct(w http.ResponseWriter, r *http.Request, product *domain.Product, err error) {
	if err != nil {
		h.writeStoreError(w, err, "product", "get")
		return
	}
	if !auth.CanViewProduct(auth.FromContext(r.Context()), *product) {
		h.writeError(w, http.StatusNotFound, "product not found", "product_not_found")
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// handleCreateProduct creates a product with its field values and attached
// files in one transaction. Values are checked against the fields of the
// product's category.
func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	product, err := domain.NewProduct(req.CategoryID, req.SubCategoryID, req.ModelName, req.Slug, req.Description, req.Published)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}

	if req.Values == nil {
		req.Values = map[string]string{}
	}
	values, ok := h.productValues(r.Context(), w, product, req.Values)
	if !ok {
		return
	}

	if err := h.store.CreateProduct(r.Context(), product, values, req.FileIDs); err != nil {
		h.writeStoreError(w, err, "product", "create")
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "category_id", product.CategoryID, "values", len(values))
	h.writeJSON(w, http.StatusCreated, product)
}

// handleUpdateProduct updates a product. The category is fixed at creation;
// omitted values or file_ids leave that part unchanged.
func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "product", "get")
		return
	}

	var req ProductRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.CategoryID != "" && req.CategoryID != product.CategoryID {
		h.writeInvalid(w, errCategoryImmutable)
		return
	}
	if err := product.Apply(req.SubCategoryID, req.ModelName, req.Slug, req.Description, req.Published); err != nil {
		h.writeInvalid(w, err)
		return
	}

	values, ok := h.productValues(r.Context(), w, product, req.Values)
	if !ok {
		return
	}

	if err := h.store.UpdateProduct(r.Context(), product, values, req.FileIDs); err != nil {
		h.writeStoreError(w, err, "product", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleSetProductValues(w http.ResponseWriter, r *http.Request) {
	product, err := h.store.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "product", "get")
		return
	}

	var req ProductValuesRequest
	if !h.decode(w, r, &req) {
		return
	}

	values, ok := h.productValues(r.Context(), w, product, req.Values)
	if !ok {
		return
	}

	if err := h.store.SetProductValues(r.Context(), product.ID, values); err != nil {
		h.writeStoreError(w, err, "product", "update")
		return
	}

	product, err = h.store.GetProduct(r.Context(), product.ID)
	if err != nil {
		h.writeStoreError(w, err, "product", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "product", "delete")
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// productValues validates raw values against the fields of the product's
// category. A nil raw map yields nil values. It writes the error response and
// returns false on failure.
func (h *Handler) productValues(ctx context.Context, w http.ResponseWriter, product *domain.Product, raw map[string]string) ([]domain.ProductValue, bool) {
	if raw == nil {
		return nil, true
	}

	fields, err := h.store.ListFieldsByCategory(ctx, product.CategoryID)
	if err != nil {
		h.writeStoreError(w, err, "field", "list")
		return nil, false
	}

	values, err := domain.ValidateProductValues(product.ID, fields, raw)
	if err != nil {
		h.writeInvalid(w, err)
		return nil, false
	}
	return values, true
}
