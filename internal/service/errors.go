// Package service provides application-level services for the catalog:
// stores and items, tags and their item links, and users.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/catalog-api/internal/events"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
)

// ServiceError wraps a failure with the service and operation it occurred in.
//
// Error handling principles:
//  1. Store sentinel errors (store.ErrNotFound family, store.ErrDuplicate,
//     store.ErrConflict) and domain validation errors stay reachable through Unwrap
//  2. Callers use errors.Is/errors.As to check for specific error conditions
//  3. The API layer maps the sentinels to HTTP status codes
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op string, err error) error {
	return &ServiceError{Service: service, Op: op, Err: err}
}

// emit builds and dispatches a catalog event. The write it describes has
// already been committed, so failures are logged and swallowed.
func emit(
	ctx context.Context,
	emitter events.EventEmitter,
	log *slog.Logger,
	eventType string,
	entityID, storeID int64,
	payload interface{},
) {
	if emitter == nil {
		return
	}
	log = logger.FromContextOrDefault(ctx, log)

	event, err := events.NewCatalogEvent(eventType, entityID, storeID, payload)
	if err != nil {
		log.Error("failed to build catalog event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType))
		return
	}
	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit catalog event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()))
	}
}
