// Package events fans accepted-bid events out to downstream consumers
// (real-time broadcast, archival). Publishing is best effort: a publish
// failure never fails the bid that produced the event.
package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BidEvent is emitted once per accepted bid.
type BidEvent struct {
	EventID         string          `json:"event_id"`
	AuctionID       string          `json:"auction_id"`
	BidID           string          `json:"bid_id"`
	BidderID        string          `json:"bidder_id"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousHighest decimal.Decimal `json:"previous_highest"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Publisher delivers accepted-bid events to a downstream system.
type Publisher interface {
	PublishBidEvent(ctx context.Context, event *BidEvent) error
	Close() error
}

// NopPublisher discards all events. Used by tests and standalone runs.
type NopPublisher struct{}

func (NopPublisher) PublishBidEvent(context.Context, *BidEvent) error { return nil }
func (NopPublisher) Close() error                                     { return nil }
