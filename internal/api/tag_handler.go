package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/catalog-api/internal/api/shared"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
	"github.com/phrazzld/catalog-api/internal/service"
)

// TagHandler handles tag requests and item-tag links.
type TagHandler struct {
	tagging service.TaggingService
	logger  *slog.Logger
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagging service.TaggingService, logger *slog.Logger) *TagHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TagHandler")
	}
	return &TagHandler{
		tagging: tagging,
		logger:  logger.With(slog.String("component", "tag_handler")),
	}
}

// ListStoreTags handles GET /store/{storeID}/tag
func (h *TagHandler) ListStoreTags(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	storeID, ok := handlePathID(w, r, "storeID", log)
	if !ok {
		return
	}

	tags, err := h.tagging.ListTagsForStore(r.Context(), storeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tags")
		return
	}

	response := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		response = append(response, tagToResponse(tag))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// CreateStoreTag handles POST /store/{storeID}/tag
func (h *TagHandler) CreateStoreTag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	storeID, ok := handlePathID(w, r, "storeID", log)
	if !ok {
		return
	}

	var req TagRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	tag, err := h.tagging.CreateTag(r.Context(), storeID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "An error occurred while inserting the tag.")
		return
	}

	log.Debug("tag created", slog.Int64("tag_id", tag.ID), slog.Int64("store_id", storeID))
	shared.RespondWithJSON(w, r, http.StatusCreated, tagToResponse(tag))
}

// GetTag handles GET /tag/{tagID}
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "tagID", log)
	if !ok {
		return
	}

	tag, err := h.tagging.GetTag(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get tag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tagToResponse(tag))
}

// DeleteTag handles DELETE /tag/{tagID}. Tags still linked to items are refused.
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "tagID", log)
	if !ok {
		return
	}

	if err := h.tagging.DeleteTag(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete tag")
		return
	}

	log.Debug("tag deleted", slog.Int64("tag_id", id))
	shared.RespondWithMessage(w, r, http.StatusAccepted, "Tag deleted.")
}

// LinkTag handles POST /item/{itemID}/tag/{tagID}
func (h *TagHandler) LinkTag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, ok := handlePathID(w, r, "itemID", log)
	if !ok {
		return
	}
	tagID, ok := handlePathID(w, r, "tagID", log)
	if !ok {
		return
	}

	tag, err := h.tagging.LinkTagToItem(r.Context(), itemID, tagID)
	if err != nil {
		HandleAPIError(w, r, err, "An error occurred while linking the tag.")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tagToResponse(tag))
}

// UnlinkTag handles DELETE /item/{itemID}/tag/{tagID}. Unlinking a pair that
// is not linked succeeds.
func (h *TagHandler) UnlinkTag(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	itemID, ok := handlePathID(w, r, "itemID", log)
	if !ok {
		return
	}
	tagID, ok := handlePathID(w, r, "tagID", log)
	if !ok {
		return
	}

	item, tag, err := h.tagging.UnlinkTagFromItem(r.Context(), itemID, tagID)
	if err != nil {
		HandleAPIError(w, r, err, "An error occurred while removing the tag.")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UnlinkResponse{
		Message: "Item removed from tag",
		Item:    itemToResponse(item),
		Tag:     tagToResponse(tag),
	})
}
