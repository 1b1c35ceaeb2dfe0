package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/wire"
	"github.com/go-chi/chi/v5"
)

// OrderHandler serves order downloads to the customers who placed them.
type OrderHandler struct {
	orders OrderService
	log    logging.Logger
}

func NewOrderHandler(orders OrderService, log logging.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, log: log}
}

func (h *OrderHandler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/{id}/download", h.Download)

	return router
}

func (h *OrderHandler) Download(w http.ResponseWriter, r *http.Request) {
	grants, err := h.orders.DownloadGrants(r.Context(), ClaimsFrom(r.Context()).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.log, r, err)
		return
	}

	resp := wire.DownloadResponse{Files: make([]wire.DownloadFile, len(grants))}
	for i, g := range grants {
		resp.Files[i] = wire.DownloadFile{
			FileName:     g.FileName,
			Category:     g.Category,
			PresignedURL: g.PresignedURL,
			FileSizeMB:   g.SizeLabel,
		}
	}
	writeJSON(w, h.log, r, http.StatusOK, resp)
}
