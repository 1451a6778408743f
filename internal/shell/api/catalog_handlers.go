package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Category Handlers
// =============================================================================

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "category", "list")
		return
	}

	h.writeJSON(w, http.StatusOK, ListCategoriesResponse{
		Categories: categories,
		Total:      len(categories),
	})
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}
	h.writeCategory(w, r, category)
}

func (h *Handler) handleGetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}
	h.writeCategory(w, r, category)
}

// writeCategory responds with the category, its sub-categories and its info
// block.
func (h *Handler) writeCategory(w http.ResponseWriter, r *http.Request, category *domain.Category) {
	subs, err := h.store.ListSubCategories(r.Context(), category.ID)
	if err != nil {
		h.writeStoreError(w, err, "sub_category", "list")
		return
	}

	info, err := h.store.GetCategoryInfo(r.Context(), category.ID)
	if err != nil && !isNotFound(err) {
		h.writeStoreError(w, err, "category_info", "get")
		return
	}

	h.writeJSON(w, http.StatusOK, CategoryResponse{
		Category:      *category,
		SubCategories: subs,
		Info:          info,
	})
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := domain.NewCategory(req.Name, req.Slug, req.Description)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}
	category.SerialNo = req.SerialNo

	if err := h.store.CreateCategory(r.Context(), category, req.FileIDs); err != nil {
		h.writeStoreError(w, err, "category", "create")
		return
	}

	h.logger.Info("category created", "category_id", category.ID, "slug", category.Slug, "serial_no", category.SerialNo)
	h.writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.store.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	var req CategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := category.Rename(req.Name, req.Slug); err != nil {
		h.writeInvalid(w, err)
		return
	}
	category.Description = req.Description

	if err := h.store.UpdateCategory(r.Context(), category, req.FileIDs); err != nil {
		h.writeStoreError(w, err, "category", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, category)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		h.writeStoreError(w, err, "category", "delete")
		return
	}

	h.logger.Info("category deleted", "category_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMoveCategory(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	category, err := h.store.MoveCategory(r.Context(), chi.URLParam(r, "id"), req.SerialNo)
	if err != nil {
		h.writeStoreError(w, err, "category", "move")
		return
	}

	h.metrics.IncrementSerial("category", "move")
	h.writeJSON(w, http.StatusOK, category)
}

func (h *Handler) handleNormalizeCategories(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.NormalizeCategorySerials(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "category", "normalize")
		return
	}

	h.metrics.IncrementSerial("category", "normalize")
	h.writeJSON(w, http.StatusOK, NormalizeResponse{Updated: n})
}

// =============================================================================
// Category Info Handlers
// =============================================================================

func (h *Handler) handleGetCategoryInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.GetCategoryInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "category_info", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

// handlePutCategoryInfo creates or replaces the info block of a category and
// its attached files in one write.
func (h *Handler) handlePutCategoryInfo(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	var req CategoryInfoRequest
	if !h.decode(w, r, &req) {
		return
	}

	status := http.StatusOK
	info, err := h.store.GetCategoryInfo(r.Context(), categoryID)
	switch {
	case isNotFound(err):
		status = http.StatusCreated
		info, err = domain.NewCategoryInfo(categoryID, req.Title, req.Description)
		if err != nil {
			h.writeInvalid(w, err)
			return
		}
	case err != nil:
		h.writeStoreError(w, err, "category_info", "get")
		return
	default:
		if err := info.Apply(req.Title, req.Description); err != nil {
			h.writeInvalid(w, err)
			return
		}
	}

	if err := h.store.UpsertCategoryInfo(r.Context(), info, req.FileIDs); err != nil {
		h.writeStoreError(w, err, "category_info", "save")
		return
	}

	h.writeJSON(w, status, info)
}

func (h *Handler) handleDeleteCategoryInfo(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategoryInfo(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "category_info", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Sub-category Handlers
// =============================================================================

func (h *Handler) handleListSubCategories(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	subs, err := h.store.ListSubCategories(r.Context(), categoryID)
	if err != nil {
		h.writeStoreError(w, err, "sub_category", "list")
		return
	}

	h.writeJSON(w, http.StatusOK, ListSubCategoriesResponse{
		SubCategories: subs,
		Total:         len(subs),
	})
}

func (h *Handler) handleGetSubCategory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.store.GetSubCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "sub_category", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleCreateSubCategory(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	var req SubCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	sub, err := domain.NewSubCategory(categoryID, req.Name, req.Slug, req.Description)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}
	sub.SerialNo = req.SerialNo

	if err := h.store.CreateSubCategory(r.Context(), sub); err != nil {
		h.writeStoreError(w, err, "sub_category", "create")
		return
	}

	h.writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) handleUpdateSubCategory(w http.ResponseWriter, r *http.Request) {
	sub, err := h.store.GetSubCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "sub_category", "get")
		return
	}

	var req SubCategoryRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := sub.Apply(req.Name, req.Slug, req.Description); err != nil {
		h.writeInvalid(w, err)
		return
	}

	if err := h.store.UpdateSubCategory(r.Context(), sub); err != nil {
		h.writeStoreError(w, err, "sub_category", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleDeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSubCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "sub_category", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMoveSubCategory(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	sub, err := h.store.MoveSubCategory(r.Context(), chi.URLParam(r, "id"), req.SerialNo)
	if err != nil {
		h.writeStoreError(w, err, "sub_category", "move")
		return
	}

	h.metrics.IncrementSerial("sub_category", "move")
	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleNormalizeSubCategories(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	n, err := h.store.NormalizeSubCategorySerials(r.Context(), categoryID)
	if err != nil {
		h.writeStoreError(w, err, "sub_category", "normalize")
		return
	}

	h.metrics.IncrementSerial("sub_category", "normalize")
	h.writeJSON(w, http.StatusOK, NormalizeResponse{Updated: n})
}
