// Package events provides catalog change events and their dispatch.
//
// Services emit a CatalogEvent after each committed write. The
// InMemoryEventEmitter fans events out to registered handlers: a
// LoggingHandler is always present, and a NATSPublisher forwards events to
// NATS when a server is configured. Emission failures are logged by the
// caller and never fail the originating request.
package events
