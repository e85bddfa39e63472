package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	TypeItemRegistered = "item.registered"
	TypeItemDeleted    = "item.deleted"
)

// Event is the envelope written to the bus.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type ItemRegistered struct {
	ItemID          string          `json:"item_id"`
	Address         string          `json:"address"`
	ContractAddress string          `json:"contract_address"`
	ProjectName     string          `json:"project_name"`
	ObjectName      string          `json:"object_name"`
	Metadata        json.RawMessage `json:"metadata"`
	Blocktime       int64           `json:"blocktime"`
	File            string          `json:"file"`
}

type ItemDeleted struct {
	ProjectName string `json:"project_name"`
	ItemName    string `json:"item_name"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, data any) error
	Close()
}

// Encode wraps data in an Event envelope stamped with now.
func Encode(eventType string, data any, now time.Time) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return json.Marshal(Event{Type: eventType, OccurredAt: now.UTC(), Data: raw})
}

// NATSPublisher publishes events on <subject>.<event type>.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *logrus.Logger
}

func NewNATSPublisher(url, subject string, logger *logrus.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	conn, err := nats.Connect(url,
		nats.Name("oort-factory"),
		nats.Timeout(5*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn, subject: subject, logger: logger}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, eventType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := Encode(eventType, data, time.Now())
	if err != nil {
		return err
	}
	subject := Subject(p.subject, eventType)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	p.logger.WithFields(logrus.Fields{"subject": subject, "bytes": len(payload)}).Debug("event published")
	return nil
}

func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// Subject joins the configured prefix and the event type.
func Subject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// NopPublisher drops every event. Used when no NATS url is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() {}
