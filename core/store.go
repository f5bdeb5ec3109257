package core

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrStaleHighestBid is returned by Store.CommitBid when the auction's stored
// highest bid no longer equals the value the caller observed during
// validation. The bid acceptance protocol reloads and re-validates on this
// error; it never escapes to callers of the operation contract.
var ErrStaleHighestBid = errors.New("observed highest bid is stale")

// Store is the persistence contract the engine requires: point lookups,
// inserts, cascade delete, and one conditional write that keeps bid insertion
// and the highest-bid update atomic per auction.
//
// Implementations must serialize CommitBid per auction: of two concurrent
// commits conditioned on the same observed highest bid, exactly one succeeds
// and the other fails with ErrStaleHighestBid. Operations on different
// auctions must not block each other.
type Store interface {
	InsertAuction(ctx context.Context, a *Auction) error
	// GetAuction returns NotFound when no auction has the given id.
	GetAuction(ctx context.Context, id uuid.UUID) (*Auction, error)
	ListAuctions(ctx context.Context) ([]*Auction, error)
	// UpdateAuction writes the full record. NotFound when absent.
	UpdateAuction(ctx context.Context, a *Auction) error
	// DeleteAuction removes the auction and cascades to its bids. Deleting
	// an absent auction is not an error.
	DeleteAuction(ctx context.Context, id uuid.UUID) error

	// ListBids returns the auction's bids in acceptance order.
	ListBids(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	// ListBidsNewestFirst returns the auction's bids ordered by CreatedAt
	// descending, the order auctions are decorated with.
	ListBidsNewestFirst(ctx context.Context, auctionID uuid.UUID) ([]*Bid, error)
	// HighestBid returns the bid with the maximum amount for the auction.
	// NotFound when the auction has no bids; a missing auction is
	// indistinguishable from a bid-less one.
	HighestBid(ctx context.Context, auctionID uuid.UUID) (*Bid, error)

	// CommitBid atomically inserts bid and sets its auction's highest bid to
	// bid.Amount, if and only if the stored highest bid still equals
	// observed. On a stale observation it fails with ErrStaleHighestBid and
	// writes nothing. Either both rows change or neither does.
	CommitBid(ctx context.Context, bid *Bid, observed decimal.NullDecimal) error
}
