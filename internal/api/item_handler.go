package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/catalog-api/internal/api/shared"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service"
)

// ItemHandler handles /item requests.
type ItemHandler struct {
	catalog service.CatalogService
	logger  *slog.Logger
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(catalog service.CatalogService, logger *slog.Logger) *ItemHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ItemHandler")
	}
	return &ItemHandler{
		catalog: catalog,
		logger:  logger.With(slog.String("component", "item_handler")),
	}
}

// ListItems handles GET /item
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListItems(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list items")
		return
	}

	response := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		response = append(response, itemToResponse(item))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreateItem handles POST /item. The route requires a fresh token.
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ItemRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	item, err := h.catalog.CreateItem(r.Context(), req.StoreID, req.Name, *req.Price)
	if err != nil {
		HandleAPIError(w, r, err, "An error occurred while inserting the item.")
		return
	}

	log.Debug("item created",
		slog.Int64("item_id", item.ID),
		slog.Int64("store_id", item.StoreID))
	shared.RespondWithJSON(w, r, http.StatusCreated, itemToResponse(item))
}

// GetItem handles GET /item/{itemID}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "itemID", log)
	if !ok {
		return
	}

	item, err := h.catalog.GetItem(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get item")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// UpdateItem handles PUT /item/{itemID}. An absent item is created with the
// requested ID, in which case store_id is required.
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "itemID", log)
	if !ok {
		return
	}

	var req ItemUpdateRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	item, created, err := h.catalog.UpdateItem(r.Context(), id, req.Name, *req.Price, req.StoreID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update item")
		return
	}

	log.Debug("item upserted", slog.Int64("item_id", item.ID), slog.Bool("created", created))
	shared.RespondWithJSON(w, r, http.StatusOK, itemToResponse(item))
}

// DeleteItem handles DELETE /item/{itemID}. The route requires an admin token.
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "itemID", log)
	if !ok {
		return
	}

	if err := h.catalog.DeleteItem(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete item")
		return
	}

	log.Debug("item deleted", slog.Int64("item_id", id))
	shared.RespondWithMessage(w, r, http.StatusOK, "Item deleted")
}
