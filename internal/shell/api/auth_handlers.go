package api

import (
	"errors"
	"net/http"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/validation"
)

// =============================================================================
// Auth Handlers
// =============================================================================

// handleLogin exchanges admin credentials for a bearer token. Unknown emails
// and wrong passwords get the same response.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		h.writeInvalid(w, validation.NewError("email", err.Error()))
		return
	}

	admin, err := h.store.GetAdminByEmail(r.Context(), email)
	if err != nil {
		if isNotFound(err) {
			err = auth.CheckPasswordUnknownAccount(req.Password)
			h.logger.Info("login rejected", "email", email)
			h.writeError(w, http.StatusUnauthorized, err.Error(), "invalid_credentials")
			return
		}
		h.writeStoreError(w, err, "admin", "get")
		return
	}

	if err := auth.CheckPassword(admin.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			h.logger.Error("password check failed", "admin_id", admin.ID, "error", err)
		}
		h.logger.Info("login rejected", "email", email)
		h.writeError(w, http.StatusUnauthorized, auth.ErrPasswordMismatch.Error(), "invalid_credentials")
		return
	}

	token, expiresAt, err := h.tokens.Issue(*admin)
	if err != nil {
		h.logger.Error("failed to issue token", "admin_id", admin.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to issue token", "internal_error")
		return
	}

	h.logger.Info("admin logged in", "admin_id", admin.ID)
	h.writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Admin:     *admin,
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	admin, err := h.store.GetAdmin(r.Context(), auth.FromContext(r.Context()).AdminID)
	if err != nil {
		h.writeStoreError(w, err, "admin", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, admin)
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	admin, err := h.store.GetAdmin(r.Context(), auth.FromContext(r.Context()).AdminID)
	if err != nil {
		h.writeStoreError(w, err, "admin", "get")
		return
	}

	if err := auth.CheckPassword(admin.PasswordHash, req.CurrentPassword); err != nil {
		h.writeInvalid(w, validation.NewError("current_password", "is incorrect"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeInvalid(w, validation.NewError("new_password", err.Error()))
		return
	}
	admin.PasswordHash = hash

	if err := h.store.UpdateAdmin(r.Context(), admin); err != nil {
		h.writeStoreError(w, err, "admin", "update")
		return
	}

	h.logger.Info("admin password changed", "admin_id", admin.ID)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Admin Handlers
// =============================================================================

func (h *Handler) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.store.ListAdmins(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "admin", "list")
		return
	}
	h.writeJSON(w, http.StatusOK, ListAdminsResponse{
		Admins: admins,
		Total:  len(admins),
	})
}

func (h *Handler) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if !h.decode(w, r, &req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeInvalid(w, validation.NewError("password", err.Error()))
		return
	}

	admin, err := domain.NewAdmin(req.Email, req.Name, hash)
	if err != nil {
		h.writeInvalid(w, validation.NewError("email", err.Error()))
		return
	}

	if err := h.store.CreateAdmin(r.Context(), admin); err != nil {
		h.writeStoreError(w, err, "admin", "create")
		return
	}

	h.logger.Info("admin created", "admin_id", admin.ID, "created_by", auth.FromContext(r.Context()).AdminID)
	h.writeJSON(w, http.StatusCreated, admin)
}
