package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events as JSON messages on NATS subjects.
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("camshaft"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{nc: nc}, nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
	}
}

func (p *NATSPublisher) PublishStatusChanged(ctx context.Context, ev StatusChangedEvent) error {
	return p.publish(SubjectStatusChanged, ev)
}

func (p *NATSPublisher) PublishLowStock(ctx context.Context, ev LowStockEvent) error {
	return p.publish(SubjectLowStock, ev)
}

func (p *NATSPublisher) publish(subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
