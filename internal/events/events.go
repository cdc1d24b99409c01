package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Catalog event types. Each is also the NATS subject suffix.
const (
	StoreCreated = "store.created"
	StoreDeleted = "store.deleted"
	ItemCreated  = "item.created"
	ItemUpdated  = "item.updated"
	ItemDeleted  = "item.deleted"
	TagCreated   = "tag.created"
	TagDeleted   = "tag.deleted"
	TagLinked    = "tag.linked"
	TagUnlinked  = "tag.unlinked"
)

// CatalogEvent records one committed change to the catalog.
type CatalogEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the catalog event type constants
	Type string `json:"type"`

	// EntityID is the ID of the store, item or tag the event is about
	EntityID int64 `json:"entity_id"`

	// StoreID is the owning store, or the store itself for store events
	StoreID int64 `json:"store_id,omitempty"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload,omitempty"`

	// OccurredAt is the timestamp when the change was committed
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *CatalogEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewCatalogEvent creates a CatalogEvent with the specified type and payload.
// A nil payload leaves Payload empty.
func NewCatalogEvent(eventType string, entityID, storeID int64, payload interface{}) (*CatalogEvent, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = b
	}

	return &CatalogEvent{
		ID:         uuid.New(),
		Type:       eventType,
		EntityID:   entityID,
		StoreID:    storeID,
		Payload:    payloadBytes,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *CatalogEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *CatalogEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *CatalogEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *CatalogEvent) error {
	return f(ctx, event)
}
