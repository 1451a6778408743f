package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/validation"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
)

// =============================================================================
// Contact Handlers
// =============================================================================

// handleCreateContact accepts the public contact form.
func (h *Handler) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !h.decode(w, r, &req) {
		return
	}

	contact, err := domain.NewContact(domain.Visitor{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
	}, req.Subject, req.Message)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}

	if err := h.store.CreateContact(r.Context(), contact); err != nil {
		h.writeStoreError(w, err, "contact", "create")
		return
	}

	h.metrics.IncrementInquiry("contact")
	h.logger.Info("contact received", "contact_id", contact.ID)
	h.writeJSON(w, http.StatusCreated, contact)
}

func (h *Handler) handleListContacts(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.inquiryFilter(w, r)
	if !ok {
		return
	}

	contacts, err := h.store.ListContacts(r.Context(), filter)
	if err != nil {
		h.writeStoreError(w, err, "contact", "list")
		return
	}

	h.writeJSON(w, http.StatusOK, ListContactsResponse{
		Contacts: contacts,
		Total:    len(contacts),
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

func (h *Handler) handleGetContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.store.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "contact", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, contact)
}

func (h *Handler) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "contact", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReplyToContact queues an email reply to the contact's sender. The
// contact is marked replied once the dispatcher delivers it.
func (h *Handler) handleReplyToContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.store.GetContact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "contact", "get")
		return
	}
	h.queueReply(w, r, domain.TargetContact, contact.ID, contact.Email)
}

// =============================================================================
// Info Request Handlers
// =============================================================================

// handleCreateInfoRequest accepts the public product inquiry form. A
// product_id, when given, must name an existing product.
func (h *Handler) handleCreateInfoRequest(w http.ResponseWriter, r *http.Request) {
	var req InfoRequestRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.ProductID != "" {
		product, err := h.store.GetProduct(r.Context(), req.ProductID)
		if err != nil {
			if isNotFound(err) {
				h.writeInvalid(w, validation.NewError("product_id", "does not exist"))
				return
			}
			h.writeStoreError(w, err, "product", "get")
			return
		}
		if !auth.CanViewProduct(auth.FromContext(r.Context()), *product) {
			h.writeInvalid(w, validation.NewError("product_id", "does not exist"))
			return
		}
	}

	info, err := domain.NewInfoRequest(req.ProductID, domain.Visitor{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Company:  req.Company,
	}, req.Message)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}

	if err := h.store.CreateInfoRequest(r.Context(), info); err != nil {
		h.writeStoreError(w, err, "info_request", "create")
		return
	}

	h.metrics.IncrementInquiry("info_request")
	h.logger.Info("info request received", "info_request_id", info.ID, "product_id", req.ProductID)
	h.writeJSON(w, http.StatusCreated, info)
}

func (h *Handler) handleListInfoRequests(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.inquiryFilter(w, r)
	if !ok {
		return
	}

	requests, err := h.store.ListInfoRequests(r.Context(), filter)
	if err != nil {
		h.writeStoreError(w, err, "info_request", "list")
		return
	}

	h.writeJSON(w, http.StatusOK, ListInfoRequestsResponse{
		InfoRequests: requests,
		Total:        len(requests),
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
}

func (h *Handler) handleGetInfoRequest(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.GetInfoRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "info_request", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleDeleteInfoRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteInfoRequest(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "info_request", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleReplyToInfoRequest(w http.ResponseWriter, r *http.Request) {
	info, err := h.store.GetInfoRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "info_request", "get")
		return
	}
	h.queueReply(w, r, domain.TargetInfoRequest, info.ID, info.Email)
}

// =============================================================================
// Replies
// =============================================================================

// queueReply stores a pending reply and wakes the dispatcher. Delivery is
// asynchronous, so the response is 202.
func (h *Handler) queueReply(w http.ResponseWriter, r *http.Request, kind domain.ReplyTarget, targetID, toEmail string) {
	var req ReplyRequest
	if !h.decode(w, r, &req) {
		return
	}

	reply, err := domain.NewReply(kind, targetID, toEmail, req.Subject, req.Body)
	if err != nil {
		h.writeInvalid(w, err)
		return
	}

	if err := h.store.CreateReply(r.Context(), reply); err != nil {
		h.writeStoreError(w, err, "reply", "create")
		return
	}

	if h.notifier != nil {
		h.notifier.Notify()
	}

	h.logger.Info("reply queued", "reply_id", reply.ID, "target_kind", kind, "target_id", targetID)
	h.writeJSON(w, http.StatusAccepted, reply)
}

// handleRetryReply re-queues a reply that exhausted its delivery attempts.
func (h *Handler) handleRetryReply(w http.ResponseWriter, r *http.Request) {
	reply, err := h.store.GetReply(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "reply", "get")
		return
	}

	if err := reply.Retry(time.Now().UTC()); err != nil {
		h.writeError(w, http.StatusConflict, err.Error(), "reply_not_failed")
		return
	}
	if err := h.store.UpdateReply(r.Context(), reply); err != nil {
		h.writeStoreError(w, err, "reply", "update")
		return
	}

	if h.notifier != nil {
		h.notifier.Notify()
	}

	h.logger.Info("reply re-queued", "reply_id", reply.ID)
	h.writeJSON(w, http.StatusAccepted, reply)
}

func (h *Handler) handleOutbox(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CountRepliesByStatus(r.Context())
	if err != nil {
		h.writeStoreError(w, err, "reply", "count")
		return
	}

	h.writeJSON(w, http.StatusOK, OutboxResponse{
		Pending: counts[domain.ReplyPending],
		Sent:    counts[domain.ReplySent],
		Failed:  counts[domain.ReplyFailed],
	})
}

// inquiryFilter reads the status, limit and offset query parameters.
func (h *Handler) inquiryFilter(w http.ResponseWriter, r *http.Request) (store.InquiryFilter, bool) {
	filter := store.InquiryFilter{ListOptions: listOptions(r)}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.InquiryStatus(s)
		if !status.IsValid() {
			h.writeInvalid(w, validation.NewError("status", "must be one of new replied"))
			return filter, false
		}
		filter.Status = status
	}
	return filter, true
}
