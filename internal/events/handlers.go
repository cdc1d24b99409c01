package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/phrazzld/catalog-api/internal/platform/logger"
)

// LoggingHandler writes every event to the log at INFO.
type LoggingHandler struct {
	logger *slog.Logger
}

// NewLoggingHandler creates a LoggingHandler.
func NewLoggingHandler(log *slog.Logger) *LoggingHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingHandler{logger: log.With(slog.String("component", "catalog_events"))}
}

// HandleEvent implements EventHandler.
func (h *LoggingHandler) HandleEvent(ctx context.Context, event *CatalogEvent) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("catalog event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.Int64("entity_id", event.EntityID),
		slog.Int64("store_id", event.StoreID))
	return nil
}

// Publisher is the subset of *nats.Conn used for publishing.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher forwards events as JSON to the subject "<prefix>.<type>".
type NATSPublisher struct {
	conn   Publisher
	prefix string
	logger *slog.Logger
}

// NewNATSPublisher creates a handler publishing on conn.
func NewNATSPublisher(conn Publisher, prefix string, log *slog.Logger) *NATSPublisher {
	if conn == nil {
		panic("nats connection cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &NATSPublisher{
		conn:   conn,
		prefix: prefix,
		logger: log.With(slog.String("component", "nats_publisher")),
	}
}

// Subject returns the subject an event of eventType is published on.
func (p *NATSPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

// HandleEvent implements EventHandler.
func (p *NATSPublisher) HandleEvent(ctx context.Context, event *CatalogEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	subject := p.Subject(event.Type)
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	logger.FromContextOrDefault(ctx, p.logger).Debug("event published",
		slog.String("subject", subject),
		slog.String("event_id", event.ID.String()))
	return nil
}

// ConnectNATS opens a NATS connection that reconnects on its own. The caller
// drains it on shutdown.
func ConnectNATS(url string, log *slog.Logger) (*nats.Conn, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "nats"))

	nc, err := nats.Connect(url,
		nats.Name("catalog-api"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", c.ConnectedUrlRedacted()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Info("connected to nats", slog.String("url", nc.ConnectedUrlRedacted()))
	return nc, nil
}
