package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSPublisher publishes bid events to a NATS JetStream stream for durable
// consumers such as archival workers. JetStream acknowledges each publish, so
// an event is persisted before PublishBidEvent returns.
type NATSPublisher struct {
	conn *nats.Conn
	js   jetstream.JetStream
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        "BID_EVENTS",
		Description: "Accepted-bid events for archival",
		Subjects:    []string{"bid.events.*"},
		Storage:     jetstream.FileStorage,
		Retention:   jetstream.WorkQueuePolicy,
		MaxAge:      24 * time.Hour,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create or update stream: %w", err)
	}

	return &NATSPublisher{conn: conn, js: js}, nil
}

func (p *NATSPublisher) PublishBidEvent(ctx context.Context, event *BidEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal bid event: %w", err)
	}
	subject := fmt.Sprintf("bid.events.%s", event.AuctionID)
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish bid event: %w", err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
