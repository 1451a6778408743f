// Package api provides HTTP handlers for the catalog API.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/validation"
	apimw "github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/api/middleware"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/api/openapi"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/media"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/metrics"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// =============================================================================
// Handler
// =============================================================================

// Notifier is told when a reply has been queued. The reply dispatcher
// implements it.
type Notifier interface {
	Notify()
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	store    store.Store
	media    *media.Storage
	tokens   *auth.TokenIssuer
	metrics  *metrics.Metrics
	notifier Notifier
	openapi  *openapi.Generator
	webUI    http.Handler
	mediaURL string
	logger   *slog.Logger
}

// Option configures optional handler dependencies.
type Option func(*Handler)

// WithMetrics records request metrics and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithNotifier wakes the reply dispatcher when a reply is queued.
func WithNotifier(n Notifier) Option {
	return func(h *Handler) {
		h.notifier = n
	}
}

// WithWebUI serves the admin/storefront SPA for non-API paths.
func WithWebUI(ui http.Handler) Option {
	return func(h *Handler) {
		h.webUI = ui
	}
}

// WithVersion sets the version reported in the OpenAPI document.
func WithVersion(version string) Option {
	return func(h *Handler) {
		h.openapi = newAPIDocument(version)
	}
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, m *media.Storage, tokens *auth.TokenIssuer, l *slog.Logger, opts ...Option) *Handler {
	if l == nil {
		l = slog.Default()
	}
	h := &Handler{
		store:    s,
		media:    m,
		tokens:   tokens,
		mediaURL: "/media",
		logger:   l.With("component", "api"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.openapi == nil {
		h.openapi = newAPIDocument("dev")
	}
	return h
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.requestIDHeader)
	r.Use(h.observe)
	r.Use(apimw.NewAuthMiddleware(apimw.AuthConfig{Tokens: h.tokens, Logger: h.logger}).Handler)

	admin := apimw.RequireAuth(h.logger)

	// Health endpoints
	r.Group(func(r chi.Router) {
		r.Use(h.jsonContentType)
		r.Get("/health", h.handleHealth)
		r.Get("/ready", h.handleReady)
	})
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	r.Get("/media/*", h.handleServeMedia)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.jsonContentType)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			h.writeError(w, http.StatusNotFound, "route not found", "not_found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method_not_allowed")
		})

		r.Get("/openapi.json", h.openapi.Handler())

		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.handleLogin)
			r.With(admin).Get("/me", h.handleMe)
			r.With(admin).Put("/password", h.handleChangePassword)
		})

		r.With(admin).Route("/admins", func(r chi.Router) {
			r.Get("/", h.handleListAdmins)
			r.Post("/", h.handleCreateAdmin)
		})

		// Category routes
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.handleListCategories)
			r.Get("/by-slug/{slug}", h.handleGetCategoryBySlug)
			r.Get("/{id}", h.handleGetCategory)
			r.Get("/{id}/info", h.handleGetCategoryInfo)
			r.Get("/{id}/sub-categories", h.handleListSubCategories)
			r.Get("/{id}/groups", h.handleListGroups)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.handleCreateCategory)
				r.Post("/normalize", h.handleNormalizeCategories)
				r.Put("/{id}", h.handleUpdateCategory)
				r.Delete("/{id}", h.handleDeleteCategory)
				r.Patch("/{id}/serial", h.handleMoveCategory)
				r.Put("/{id}/info", h.handlePutCategoryInfo)
				r.Delete("/{id}/info", h.handleDeleteCategoryInfo)
				r.Post("/{id}/sub-categories", h.handleCreateSubCategory)
				r.Post("/{id}/sub-categories/normalize", h.handleNormalizeSubCategories)
				r.Post("/{id}/groups", h.handleCreateGroup)
				r.Post("/{id}/groups/normalize", h.handleNormalizeGroups)
			})
		})

		// Sub-category routes
		r.Route("/sub-categories", func(r chi.Router) {
			r.Get("/{id}", h.handleGetSubCategory)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Put("/{id}", h.handleUpdateSubCategory)
				r.Delete("/{id}", h.handleDeleteSubCategory)
				r.Patch("/{id}/serial", h.handleMoveSubCategory)
			})
		})

		// Group routes
		r.Route("/groups", func(r chi.Router) {
			r.Get("/{id}", h.handleGetGroup)
			r.Get("/{id}/fields", h.handleListFields)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Put("/{id}", h.handleUpdateGroup)
				r.Delete("/{id}", h.handleDeleteGroup)
				r.Patch("/{id}/serial", h.handleMoveGroup)
				r.Post("/{id}/fields", h.handleCreateField)
				r.Post("/{id}/fields/normalize", h.handleNormalizeFields)
			})
		})

		// Field routes
		r.Route("/fields", func(r chi.Router) {
			r.Get("/{id}", h.handleGetField)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Put("/{id}", h.handleUpdateField)
				r.Delete("/{id}", h.handleDeleteField)
				r.Patch("/{id}/serial", h.handleMoveField)
			})
		})

		// Product routes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.handleListProducts)
			r.Get("/by-slug/{slug}", h.handleGetProductBySlug)
			r.Get("/{id}", h.handleGetProduct)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.handleCreateProduct)
				r.Put("/{id}", h.handleUpdateProduct)
				r.Put("/{id}/values", h.handleSetProductValues)
				r.Delete("/{id}", h.handleDeleteProduct)
			})
		})

		// Background (CMS block) routes
		r.Route("/backgrounds", func(r chi.Router) {
			r.Get("/", h.handleListBackgrounds)
			r.Get("/{id}", h.handleGetBackground)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", h.handleCreateBackground)
				r.Post("/normalize", h.handleNormalizeBackgrounds)
				r.Put("/{id}", h.handleUpdateBackground)
				r.Delete("/{id}", h.handleDeleteBackground)
				r.Patch("/{id}/serial", h.handleMoveBackground)
			})
		})

		// File routes
		r.With(admin).Route("/files", func(r chi.Router) {
			r.Post("/", h.handleUploadFile)
			r.Get("/", h.handleListFiles)
			r.Get("/{id}", h.handleGetFile)
			r.Delete("/{id}", h.handleDeleteFile)
		})

		// Inquiry routes
		r.Route("/contacts", func(r chi.Router) {
			r.Post("/", h.handleCreateContact)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/", h.handleListContacts)
				r.Get("/{id}", h.handleGetContact)
				r.Delete("/{id}", h.handleDeleteContact)
				r.Post("/{id}/replies", h.handleReplyToContact)
			})
		})

		r.Route("/info-requests", func(r chi.Router) {
			r.Post("/", h.handleCreateInfoRequest)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/", h.handleListInfoRequests)
				r.Get("/{id}", h.handleGetInfoRequest)
				r.Delete("/{id}", h.handleDeleteInfoRequest)
				r.Post("/{id}/replies", h.handleReplyToInfoRequest)
			})
		})

		r.With(admin).Route("/outbox", func(r chi.Router) {
			r.Get("/", h.handleOutbox)
			r.Post("/{id}/retry", h.handleRetryReply)
		})
	})

	if h.webUI != nil {
		r.NotFound(h.webUI.ServeHTTP)
	}

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// observe records request count and latency labelled by the matched route
// pattern, so path parameters do not explode label cardinality.
func (h *Handler) observe(next http.Handler) http.Handler {
	if h.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		var route string
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		h.metrics.ObserveRequest(r.Method, route, status, start)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", "check", "database", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Helpers
// =============================================================================

// decode reads a JSON body into v and validates its struct tags. It writes
// the error response and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "payload_too_large")
			return false
		}
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return false
	}
	if err := validation.Validate(v); err != nil {
		h.writeInvalid(w, err)
		return false
	}
	return true
}

// listOptions reads limit and offset query parameters.
func listOptions(r *http.Request) store.ListOptions {
	opts := store.DefaultListOptions()

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			opts.Limit = l
		}
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		if o, err := strconv.Atoi(offset); err == nil {
			opts.Offset = o
		}
	}

	return opts.Normalize()
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeInvalid writes a 400 for a rejected request. Field-level errors keep
// their field map; domain rule violations carry their message.
func (h *Handler) writeInvalid(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "validation failed",
			Code:   "validation_error",
			Fields: verr.Fields,
		})
		return
	}
	var valueErrs domain.ValueErrors
	if errors.As(err, &valueErrs) {
		h.writeInvalid(w, validation.FromValueErrors(valueErrs))
		return
	}
	h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
}

// writeStoreError maps a store error for entity to a response. action names
// the failed operation in the 500 message.
func (h *Handler) writeStoreError(w http.ResponseWriter, err error, entity, action string) {
	label := strings.ReplaceAll(entity, "_", " ")
	switch {
	case isNotFound(err):
		h.writeError(w, http.StatusNotFound, label+" not found", entity+"_not_found")
	case errors.Is(err, store.ErrDuplicate):
		h.writeError(w, http.StatusConflict, label+" already exists", entity+"_exists")
	case errors.Is(err, store.ErrForeignKey):
		h.writeError(w, http.StatusConflict, referenceMessage(err), "invalid_reference")
	default:
		h.logger.Error("failed to "+action+" "+label, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to "+action+" "+label, "internal_error")
	}
}

func referenceMessage(err error) string {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) && storeErr.Message != "" {
		return storeErr.Message
	}
	return "referenced entity does not exist"
}

func isNotFound(err error) bool {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return errors.Is(storeErr.Unwrap(), store.ErrNotFound)
	}
	return false
}

// isAdmin reports whether the request carries an admin session.
func isAdmin(r *http.Request) bool {
	return auth.CanManageCatalog(auth.FromContext(r.Context()))
}
