package api

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/media"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
)

// multipartOverhead is the allowance on top of the media size limit for
// multipart boundaries and part headers.
const multipartOverhead = 1 << 20

// =============================================================================
// Background Handlers
// =============================================================================

// handleListBackgrounds lists content blocks, optionally for one section.
// Anonymous callers only see active blocks.
func (h *Handler) handleListBackgrounds(w http.ResponseWriter, r *http.Request) {
	filter := store.BackgroundFilter{
		Section:    domain.Slugify(r.URL.Query().Get("section")),
		ActiveOnly: !isAdmin(r) || r.URL.Query().Get("active") == "true",
	}

	backgrounds, err := h.store.ListBackgrounds(r.Context(), filter)
	if err != nil {
		h.writeStoreError(w, err, "background", "list")
		return
	}

	h.writeJSON(w, http.StatusOK, ListBackgroundsResponse{
		Backgrounds: backgrounds,
		Total:       len(backgrounds),
	})
}

func (h *Handler) handleGetBackground(w http.ResponseWriter, r *http.Request) {
	bg, err := h.store.GetBackground(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "background", "get")
		return
	}
	if !auth.CanViewBackground(auth.FromContext(r.Context()), *bg) {
		h.writeError(w, http.StatusNotFound, "background not found", "background_not_found")
		return
	}
	h.writeJSON(w, http.StatusOK, bg)
}

func (h *Handler) handleCreateBackground(w http.ResponseWriter, r *http.Request) {
	var req BackgroundRequest
	if !h.decode(w, r, &req) {
		return
	}

	bg, err := domain.NewBackground(req.spec())
	if err != nil {
		h.writeInvalid(w, err)
		return
	}
	bg.SerialNo = req.SerialNo

	if err := h.store.CreateBackground(r.Context(), bg); err != nil {
		h.writeStoreError(w, err, "background", "create")
		return
	}

	h.writeJSON(w, http.StatusCreated, bg)
}

func (h *Handler) handleUpdateBackground(w http.ResponseWriter, r *http.Request) {
	bg, err := h.store.GetBackground(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "background", "get")
		return
	}

	var req BackgroundRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := bg.Apply(req.spec()); err != nil {
		h.writeInvalid(w, err)
		return
	}

	if err := h.store.UpdateBackground(r.Context(), bg); err != nil {
		h.writeStoreError(w, err, "background", "update")
		return
	}

	h.writeJSON(w, http.StatusOK, bg)
}

func (h *Handler) handleDeleteBackground(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteBackground(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeStoreError(w, err, "background", "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMoveBackground(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}

	bg, err := h.store.MoveBackground(r.Context(), chi.URLParam(r, "id"), req.SerialNo)
	if err != nil {
		h.writeStoreError(w, err, "background", "move")
		return
	}

	h.metrics.IncrementSerial("background", "move")
	h.writeJSON(w, http.StatusOK, bg)
}

// handleNormalizeBackgrounds renumbers the blocks of the section given by the
// section query parameter.
func (h *Handler) handleNormalizeBackgrounds(w http.ResponseWriter, r *http.Request) {
	section := domain.Slugify(r.URL.Query().Get("section"))
	if section == "" {
		h.writeInvalid(w, domain.ErrSectionRequired)
		return
	}

	n, err := h.store.NormalizeBackgroundSerials(r.Context(), section)
	if err != nil {
		h.writeStoreError(w, err, "background", "normalize")
		return
	}

	h.metrics.IncrementSerial("background", "normalize")
	h.writeJSON(w, http.StatusOK, NormalizeResponse{Updated: n})
}

// =============================================================================
// File Handlers
// =============================================================================

// handleUploadFile stores the "file" part of a multipart form and records its
// metadata. The object is removed again if the metadata cannot be saved.
func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.media.MaxBytes()+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "expected multipart/form-data body", "validation_error")
		return
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  "validation failed",
				Code:   "validation_error",
				Fields: map[string]string{"file": "is required"},
			})
			return
		}
		if err != nil {
			h.writeUploadError(w, err)
			return
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}

		name := part.FileName()
		if name == "" {
			name = "upload"
		}
		obj, err := h.media.Save(name, part)
		part.Close()
		if err != nil {
			h.writeUploadError(w, err)
			return
		}

		file, err := domain.NewFile(name, obj.Key, obj.MimeType, obj.Size)
		if err == nil {
			err = h.store.CreateFile(r.Context(), file)
		}
		if err != nil {
			if rmErr := h.media.Remove(obj.Key); rmErr != nil {
				h.logger.Warn("failed to remove orphaned upload", "key", obj.Key, "error", rmErr)
			}
			h.writeStoreError(w, err, "file", "create")
			return
		}

		h.metrics.RecordUpload(file.Size)
		h.logger.Info("file uploaded", "file_id", file.ID, "key", file.StorageKey, "mime_type", file.MimeType, "size", file.Size)
		h.writeJSON(w, http.StatusCreated, h.fileResponse(*file))
		return
	}
}

func (h *Handler) writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, media.ErrTooLarge), errors.As(err, &maxErr):
		h.writeError(w, http.StatusRequestEntityTooLarge, media.ErrTooLarge.Error(), "file_too_large")
	case errors.Is(err, media.ErrUnsupportedType):
		h.writeError(w, http.StatusUnsupportedMediaType, err.Error(), "unsupported_media_type")
	case errors.Is(err, media.ErrEmpty):
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
	default:
		h.logger.Error("failed to store upload", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to store upload", "internal_error")
	}
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	opts := listOptions(r)

	files, err := h.store.ListFiles(r.Context(), opts)
	if err != nil {
		h.writeStoreError(w, err, "file", "list")
		return
	}

	resp := ListFilesResponse{
		Files:  make([]FileResponse, 0, len(files)),
		Total:  len(files),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}
	for _, f := range files {
		resp.Files = append(resp.Files, h.fileResponse(f))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "file", "get")
		return
	}
	h.writeJSON(w, http.StatusOK, h.fileResponse(*file))
}

// handleDeleteFile removes the file row, detaching it everywhere, then the
// stored object.
func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeStoreError(w, err, "file", "get")
		return
	}

	if err := h.store.DeleteFile(r.Context(), file.ID); err != nil {
		h.writeStoreError(w, err, "file", "delete")
		return
	}
	if err := h.media.Remove(file.StorageKey); err != nil {
		h.logger.Warn("failed to remove stored object", "file_id", file.ID, "key", file.StorageKey, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fileResponse(f domain.File) FileResponse {
	return FileResponse{File: f, URL: f.URL(h.mediaURL)}
}

// =============================================================================
// Media Serving
// =============================================================================

// handleServeMedia streams a stored object. Keys are unique per upload, so
// responses are cacheable indefinitely.
func (h *Handler) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	f, info, err := h.media.Open(key)
	if err != nil {
		if errors.Is(err, media.ErrInvalidKey) || errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("failed to open media", "key", key, "error", err)
		http.Error(w, "failed to open media", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	contentType := ""
	if file, err := h.store.GetFileByKey(r.Context(), key); err == nil {
		contentType = file.MimeType
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(strings.ToLower(extensionOf(key)))
	}
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func extensionOf(key string) string {
	if i := strings.LastIndexByte(key, '.'); i >= 0 && !strings.Contains(key[i:], "/") {
		return key[i:]
	}
	return ""
}
