package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/catalog-api/internal/api/shared"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service"
)

// StoreHandler handles /store requests.
type StoreHandler struct {
	catalog service.CatalogService
	logger  *slog.Logger
}

// NewStoreHandler creates a new StoreHandler
func NewStoreHandler(catalog service.CatalogService, logger *slog.Logger) *StoreHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StoreHandler")
	}
	return &StoreHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "store_handler")),
	}
}

// ListStores handles GET /store
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.catalog.ListStores(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list stores")
		return
	}

	response := make([]StoreResponse, 0, len(stores))
	for _, st := range stores {
		response = append(response, storeToResponse(st))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreateStore handles POST /store
func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StoreRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	st, err := h.catalog.CreateStore(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "An error occurred while inserting the store.")
		return
	}

	log.Debug("store created", slog.Int64("store_id", st.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, PlainStore{ID: st.ID, Name: st.Name})
}

// GetStore handles GET /store/{storeID}
func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "storeID", log)
	if !ok {
		return
	}

	st, err := h.catalog.GetStore(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get store")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, storeToResponse(st))
}

// DeleteStore handles DELETE /store/{storeID}
func (h *StoreHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "storeID", log)
	if !ok {
		return
	}

	if err := h.catalog.DeleteStore(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete store")
		return
	}

	log.Debug("store deleted", slog.Int64("store_id", id))
	shared.RespondWithMessage(w, r, http.StatusOK, "Store deleted")
}
