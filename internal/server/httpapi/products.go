package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/server/models"
	"github.com/dmitrijs2005/meshmart/internal/server/services"
	"github.com/dmitrijs2005/meshmart/internal/wire"
	"github.com/go-chi/chi/v5"
)

// ProductHandler serves product and file management for administrators.
type ProductHandler struct {
	products ProductService
	log      logging.Logger
}

func NewProductHandler(products ProductService, log logging.Logger) *ProductHandler {
	return &ProductHandler{products: products, log: log}
}

func (h *ProductHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", h.Create)
	router.Delete("/{id}", h.Delete)
	router.Get("/{id}/files", h.ListFiles)
	router.Put("/{id}/files/order", h.Arrange)
	router.Delete("/{id}/files/{fileID}", h.DeleteFile)
	router.Post("/{id}/files/presign", h.Presign)
	router.Post("/{id}/files/confirm", h.Confirm)

	return router
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	p, err := h.products.Create(r.Context(), ClaimsFrom(r.Context()).UserID, req.Title)
	if err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	writeJSON(w, h.log, r, http.StatusCreated, wire.Product{ID: p.ID, Title: p.Title})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.products.ListFiles(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	resp := wire.ProductFilesResponse{Files: make([]wire.ProductFile, len(files))}
	for i, f := range files {
		resp.Files[i] = h.fileToWire(f)
	}
	writeJSON(w, h.log, r, http.StatusOK, resp)
}

func (h *ProductHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	if err := h.products.DeleteFile(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "fileID")); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) Arrange(w http.ResponseWriter, r *http.Request) {
	var req wire.ArrangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	if err := h.products.Arrange(r.Context(), chi.URLParam(r, "id"), req.Order, req.ThumbnailFileID); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) Presign(w http.ResponseWriter, r *http.Request) {
	var req wire.PresignRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	specs := make([]services.UploadSpec, len(req.Files))
	for i, f := range req.Files {
		specs[i] = services.UploadSpec{
			FileName: f.FileName,
			FileType: f.FileType,
			FileSize: f.FileSize,
			Category: f.Category,
		}
	}

	grants, err := h.products.IssueUploadGrants(r.Context(), chi.URLParam(r, "id"), specs)
	if err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	resp := wire.PresignResponse{Grants: make([]wire.UploadGrant, len(grants))}
	for i, g := range grants {
		resp.Grants[i] = wire.UploadGrant{
			FileName:     g.FileName,
			PresignedURL: g.PresignedURL,
			StorageKey:   g.StorageKey,
			Category:     g.Category,
			ExpiresAt:    g.ExpiresAt,
		}
	}
	writeJSON(w, h.log, r, http.StatusOK, resp)
}

func (h *ProductHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req wire.ConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	f, err := h.products.ConfirmUpload(r.Context(), chi.URLParam(r, "id"), services.Confirmation{
		FileName:     req.FileName,
		FileType:     req.FileType,
		FileSize:     req.FileSize,
		StorageKey:   req.StorageKey,
		Category:     req.Category,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	writeJSON(w, h.log, r, http.StatusOK, h.fileToWire(f))
}

func (h *ProductHandler) fileToWire(f *models.ProductFile) wire.ProductFile {
	return wire.ProductFile{
		ID:           f.ID,
		ProductID:    f.ProductID,
		FileName:     f.FileName,
		FileSize:     f.FileSize,
		Category:     f.Category,
		DisplayOrder: f.DisplayOrder,
		IsThumbnail:  f.IsThumbnail,
		PublicURL:    h.products.PublicURL(f.StorageKey),
		StorageKey:   f.StorageKey,
	}
}
