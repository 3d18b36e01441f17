package documents

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"workforce/internal/api"
	"workforce/internal/authz"
	"workforce/internal/employees"
	"workforce/internal/middleware"
	"workforce/internal/shared"
)

const maxUploadBytes = 10 << 20

type Handler struct {
	Store      *Store
	Directory  *employees.Store
	StorageDir string
}

func NewHandler(store *Store, directory *employees.Store, storageDir string) *Handler {
	return &Handler{Store: store, Directory: directory, StorageDir: storageDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/documents", func(r chi.Router) {
		r.Post("/", h.handleUpload)
		r.Get("/", h.handleList)
		r.Get("/{documentID}", h.handleGet)
		r.Get("/{documentID}/download", h.handleDownload)
		r.Delete("/{documentID}", h.handleDelete)
	})
}

// handleUpload accepts a multipart form with a "file" part plus employeeId
// and docType fields. Employees may only upload against their own profile.
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid multipart payload", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.FormValue("employeeId")
	docType := r.FormValue("docType")
	v := shared.NewValidator()
	if !caller.IsAdmin() {
		// Employees upload against their own profile regardless of the field.
		own, err := h.Directory.EmployeeIDByUser(r.Context(), caller.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for caller", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = own
	}
	v.Required("employeeId", employeeID, "is required")
	v.Required("docType", docType, "is required")
	v.Enum("docType", docType, DocTypes, "must be one of id-card, passport, visa, contract, certificate, other")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if _, err := h.Directory.OwnerUserID(r.Context(), employeeID); err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "file part is required", middleware.GetRequestID(r.Context()))
		return
	}
	defer file.Close()

	if err := os.MkdirAll(h.StorageDir, 0o755); err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_upload_failed", "failed to store document", middleware.GetRequestID(r.Context()))
		return
	}
	storagePath := filepath.Join(h.StorageDir, uuid.NewString()+filepath.Ext(header.Filename))
	dst, err := os.OpenFile(storagePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_upload_failed", "failed to store document", middleware.GetRequestID(r.Context()))
		return
	}
	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadBytes)); err != nil {
		dst.Close()
		os.Remove(storagePath)
		api.Fail(w, http.StatusInternalServerError, "document_upload_failed", "failed to store document", middleware.GetRequestID(r.Context()))
		return
	}
	if err := dst.Close(); err != nil {
		os.Remove(storagePath)
		api.Fail(w, http.StatusInternalServerError, "document_upload_failed", "failed to store document", middleware.GetRequestID(r.Context()))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	doc := &Document{
		EmployeeID:  employeeID,
		DocType:     strings.ToLower(strings.TrimSpace(docType)),
		FileName:    filepath.Base(header.Filename),
		ContentType: contentType,
		StoragePath: storagePath,
		UploadedBy:  caller.UserID,
	}
	if err := h.Store.Create(r.Context(), doc); err != nil {
		os.Remove(storagePath)
		api.Fail(w, http.StatusInternalServerError, "document_upload_failed", "failed to store document", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, doc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := r.URL.Query().Get("employeeId")
	if !caller.IsAdmin() {
		own, err := h.Directory.EmployeeIDByUser(r.Context(), caller.UserID)
		if err != nil {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "no employee profile for caller", middleware.GetRequestID(r.Context()))
			return
		}
		employeeID = own
	}

	p := shared.ParsePagination(r, 50, 200)
	list, err := h.Store.List(r.Context(), employeeID, p.Limit, p.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_list_failed", "failed to list documents", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) loadAuthorized(w http.ResponseWriter, r *http.Request) (*Document, bool) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return nil, false
	}

	doc, err := h.Store.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "document_not_found", "document not found", middleware.GetRequestID(r.Context()))
			return nil, false
		}
		api.Fail(w, http.StatusInternalServerError, "document_get_failed", "failed to load document", middleware.GetRequestID(r.Context()))
		return nil, false
	}

	owner, err := h.Directory.OwnerUserID(r.Context(), doc.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	if err := authz.Authorize(caller, owner); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed to view this document", middleware.GetRequestID(r.Context()))
		return nil, false
	}
	return doc, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}
	api.Success(w, doc, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.loadAuthorized(w, r)
	if !ok {
		return
	}

	f, err := os.Open(doc.StoragePath)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "document_missing", "document bytes are missing", middleware.GetRequestID(r.Context()))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	if _, err := io.Copy(w, f); err != nil {
		return
	}
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	if err := authz.RequireRole(caller, authz.RoleAdmin); err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", "admin role required", middleware.GetRequestID(r.Context()))
		return
	}

	doc, err := h.Store.Get(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "document_not_found", "document not found", middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "document_delete_failed", "failed to delete document", middleware.GetRequestID(r.Context()))
		return
	}
	if err := h.Store.Delete(r.Context(), doc.ID); err != nil {
		api.Fail(w, http.StatusInternalServerError, "document_delete_failed", "failed to delete document", middleware.GetRequestID(r.Context()))
		return
	}
	if err := os.Remove(doc.StoragePath); err != nil && !os.IsNotExist(err) {
		slog.Warn("document bytes left behind", "documentId", doc.ID, "err", err)
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
