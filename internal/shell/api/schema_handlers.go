package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
)

// =============================================================================
// Group Handlers
// =============================================================================

// handleListGroups returns the groups of a category in order, each with its
// fields in order. This is the attribute schema products are edited against.
func (h *Handler) handleListGroups(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	groups, err := h.store.ListGroups(r.Context(), categoryID)
	if err != nil {
		h.writeStoreError(w, err, "group", "list")
		return
	}
	fields, err := h.store.ListFieldsByCategory(r.Context(), categoryID)
	if err != nil {
		h.writeStoreError(w, err, "field", "list")
		return
	}

	byGroup := make(map[string][]domain.Field, len(groups))
	for _, f := range fields {
		byGroup[f.GroupID] = append(byGroup[f.GroupID], f)
	}
	for i := range groups {
		groups[i].Fields = byGroup[groups[i].ID]
		if groups[i].Fields == nil {
			groups[i].Fields = []domain.Field{}
		}
	}

	h.writeJSON(w, http.StatusOK, ListGroupsResponse{
		Groups: groups,
		Total:  len(groups),
	})
}

func (h *Handler) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.store.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "group", "get")
		return
	}

	fields, err := h.store.ListFields(r.Context(), group.ID)
	if err != nil {
		h.writeStoreError(w, err, "field", "list")
		return
	}
	group.Fields = fields

	h.writeJSON(w, http.StatusOK, group)
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	var req GroupRequest
	if !h.decode(w, r, &req) {
		return
	}

	group, err := domain.NewGroup(categoryID, req.Name)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}
	group.SerialNo = req.SerialNo

	if err := h.store.CreateGroup(r.Context(), group); err != nil {
		h.writeStoreError(w, err, "group", "create")
		return
	}

	h.writeJSON(w, http.StatusCreated, group)
}

func (h *Handler) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.store.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "group", "get")
		return
	}

	var req GroupRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := group.Rename(req.Name); err != nil {
		h.writeInvalid(w, err)
		return
	}

	if err := h.store.UpdateGroup(r.Context(), group); err != nil {
		h.writeStoreError(w, err, "group", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, group)
}

func (h *Handler) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "group", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMoveGroup(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	group, err := h.store.MoveGroup(r.Context(), chi.URLParam(r, "id"), req.SerialNo)
	if err != nil {
		h.writeStoreError(w, err, "group", "move")
		return
	}

	h.metrics.IncrementSerial("group", "move")
	h.writeJSON(w, http.StatusOK, group)
}

func (h *Handler) handleNormalizeGroups(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "id")
	if _, err := h.store.GetCategory(r.Context(), categoryID); err != nil {
		h.writeStoreError(w, err, "category", "get")
		return
	}

	n, err := h.store.NormalizeGroupSerials(r.Context(), categoryID)
	if err != nil {
		h.writeStoreError(w, err, "group", "normalize")
		return
	}

	h.metrics.IncrementSerial("group", "normalize")
	h.writeJSON(w, http.StatusOK, NormalizeResponse{Updated: n})
}

// =============================================================================
// Field Handlers
// =============================================================================

func (h *Handler) handleListFields(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if _, err := h.store.GetGroup(r.Context(), groupID); err != nil {
		h.writeStoreError(w, err, "group", "get")
		return
	}

	fields, err := h.store.ListFields(r.Context(), groupID)
	if err != nil {
		h.writeStoreError(w, err, "field", "list")
		return
	}

	h.writeJSON(w, http.StatusOK, ListFieldsResponse{
		Fields: fields,
		Total:  len(fields),
	})
}

func (h *Handler) handleGetField(w http.ResponseWriter, r *http.Request) {
	field, err := h.store.GetField(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "field", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, field)
}

func (h *Handler) handleCreateField(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if _, err := h.store.GetGroup(r.Context(), groupID); err != nil {
		h.writeStoreError(w, err, "group", "get")
		return
	}

	var req FieldRequest
	if !h.decode(w, r, &req) {
		return
	}

	field, err := domain.NewField(groupID, req.spec())
	if err != nil {
		h.writeInvalid(w, err)
		return
	}
	field.SerialNo = req.SerialNo

	if err := h.store.CreateField(r.Context(), field); err != nil {
		h.writeStoreError(w, err, "field", "create")
		return
	}

	h.writeJSON(w, http.StatusCreated, field)
}

// handleUpdateField changes a field definition. Existing product values are
// kept; they are re-validated the next time the product is saved.
func (h *Handler) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	field, err := h.store.GetField(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "field", "get")
		return
	}

	var req FieldRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := field.Apply(req.spec()); err != nil {
		h.writeInvalid(w, err)
		return
	}

	if err := h.store.UpdateField(r.Context(), field); err != nil {
		h.writeStoreError(w, err, "field", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, field)
}

func (h *Handler) handleDeleteField(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteField(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "field", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMoveField(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	field, err := h.store.MoveField(r.Context(), chi.URLParam(r, "id"), req.SerialNo)
	if err != nil {
		h.writeStoreError(w, err, "field", "move")
		return
	}

	h.metrics.IncrementSerial("field", "move")
	h.writeJSON(w, http.StatusOK, field)
}

func (h *Handler) handleNormalizeFields(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	if _, err := h.store.GetGroup(r.Context(), groupID); err != nil {
		h.writeStoreError(w, err, "group", "get")
		return
	}

	n, err := h.store.NormalizeFieldSerials(r.Context(), groupID)
	if err != nil {
		h.writeStoreError(w, err, "field", "normalize")
		return
	}

	h.metrics.IncrementSerial("field", "normalize")
	h.writeJSON(w, http.StatusOK, NormalizeResponse{Updated: n})
}
