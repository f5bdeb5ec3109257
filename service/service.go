// Package service implements the operation contract the transport layer
// calls into: auction CRUD, bid placement, and the query operations. It
// orchestrates the validators, the lifecycle state machine, and the bid
// acceptance protocol over a core.Store, and publishes an event for every
// accepted bid.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Ragnarsss/auction-ms/core"
	"github.com/Ragnarsss/auction-ms/events"
	"github.com/Ragnarsss/auction-ms/validation"
)

type Service struct {
	store core.Store
	pub   events.Publisher
	log   zerolog.Logger
	now   func() time.Time
}

func New(store core.Store, pub events.Publisher, log zerolog.Logger) *Service {
	return NewWithClock(store, pub, log, time.Now)
}

// NewWithClock injects the time source, so tests can place operations at
// exact instants relative to auction windows.
func NewWithClock(store core.Store, pub events.Publisher, log zerolog.Logger, now func() time.Time) *Service {
	return &Service{store: store, pub: pub, log: log, now: now}
}

// AuctionWithBids decorates an auction with its bids, newest first.
type AuctionWithBids struct {
	*core.Auction
	Bids []*core.Bid `json:"bids"`
}

// CreateAuctionInput carries the raw inputs of CreateAuction. Monetary
// values arrive as strings and are parsed into exact decimals; an empty
// currency defaults to USD.
type CreateAuctionInput struct {
	SellerID        string
	ItemID          string
	Title           string
	Description     string
	Category        string
	StartTime       time.Time
	EndTime         time.Time
	BasePrice       string
	MinBidIncrement string
	Currency        string
}

// CreateAuction validates in and persists a new auction in status pending
// with no highest bid.
func (s *Service) CreateAuction(ctx context.Context, in CreateAuctionInput) (*core.Auction, error) {
	now := s.now()
	if err := validation.TimeRange(in.StartTime, in.EndTime, now); err != nil {
		return nil, err
	}
	if err := validation.RequireID(in.SellerID, "seller_id"); err != nil {
		return nil, err
	}
	if err := validation.RequireID(in.ItemID, "item_id"); err != nil {
		return nil, err
	}
	if err := validation.RequireText(in.Category, "category"); err != nil {
		return nil, err
	}
	basePrice, err := validation.Amount(in.BasePrice, "base_price")
	if err != nil {
		return nil, err
	}
	minIncrement, err := validation.Amount(in.MinBidIncrement, "min_bid_increment")
	if err != nil {
		return nil, err
	}

	currency := core.CurrencyUSD
	if in.Currency != "" {
		if currency, err = core.ParseCurrency(in.Currency); err != nil {
			return nil, err
		}
	}

	auction := &core.Auction{
		ID:              uuid.New(),
		SellerID:        in.SellerID,
		ItemID:          in.ItemID,
		Title:           in.Title,
		Description:     in.Description,
		Category:        strings.TrimSpace(in.Category),
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		BasePrice:       basePrice,
		MinBidIncrement: minIncrement,
		Status:          core.StatusPending,
		Currency:        currency,
	}
	if err := s.store.InsertAuction(ctx, auction); err != nil {
		s.log.Error().Err(err).Msg("failed to insert auction")
		return nil, core.Internalf(err, "failed to create auction")
	}

	s.log.Info().
		Str("auction_id", auction.ID.String()).
		Str("seller_id", auction.SellerID).
		Str("currency", auction.Currency.String()).
		Msg("auction created")
	return auction, nil
}

// ListAuctions returns every auction, each decorated with its bids newest
// first.
func (s *Service) ListAuctions(ctx context.Context) ([]*AuctionWithBids, error) {
	auctions, err := s.store.ListAuctions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*AuctionWithBids, 0, len(auctions))
	for _, a := range auctions {
		bids, err := s.store.ListBidsNewestFirst(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &AuctionWithBids{Auction: a, Bids: bids})
	}
	s.log.Debug().Int("count", len(out)).Msg("listed auctions")
	return out, nil
}

// GetAuction returns one auction with its bids newest first, or NotFound.
func (s *Service) GetAuction(ctx context.Context, rawID string) (*AuctionWithBids, error) {
	id, err := parseAuctionID(rawID)
	if err != nil {
		return nil, err
	}
	auction, err := s.store.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}
	bids, err := s.store.ListBidsNewestFirst(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AuctionWithBids{Auction: auction, Bids: bids}, nil
}

// UpdateAuctionInput carries the optional fields of UpdateAuction. Nil means
// "leave unchanged"; monetary values and enums arrive raw and are validated
// here.
type UpdateAuctionInput struct {
	Title           *string
	Description     *string
	Category        *string
	StartTime       *time.Time
	EndTime         *time.Time
	BasePrice       *string
	MinBidIncrement *string
	HighestBid      *string
	Currency        *string
	Status          *string
}

// UpdateAuction applies a partial update, including lifecycle transitions. A
// transition to active resets the auction's start time to the update
// instant.
func (s *Service) UpdateAuction(ctx context.Context, rawID string, in UpdateAuctionInput) (*core.Auction, error) {
	id, err := parseAuctionID(rawID)
	if err != nil {
		return nil, err
	}
	auction, err := s.store.GetAuction(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := core.AuctionUpdate{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
	}
	if in.BasePrice != nil {
		d, err := validation.Amount(*in.BasePrice, "base_price")
		if err != nil {
			return nil, err
		}
		upd.BasePrice = &d
	}
	if in.MinBidIncrement != nil {
		d, err := validation.Amount(*in.MinBidIncrement, "min_bid_increment")
		if err != nil {
			return nil, err
		}
		upd.MinBidIncrement = &d
	}
	if in.HighestBid != nil {
		d, err := validation.Amount(*in.HighestBid, "highest_bid")
		if err != nil {
			return nil, err
		}
		upd.HighestBid = &d
	}
	if in.Currency != nil {
		c, err := core.ParseCurrency(*in.Currency)
		if err != nil {
			return nil, err
		}
		upd.Currency = &c
	}
	if in.Status != nil {
		st, err := core.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		upd.Status = &st
	}

	core.ApplyUpdate(auction, upd, s.now())
	if err := s.store.UpdateAuction(ctx, auction); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("auction_id", auction.ID.String()).
		Str("status", auction.Status.String()).
		Msg("auction updated")
	return auction, nil
}

// DeleteAuction removes the auction and its bids. Deleting an absent auction
// still acks.
func (s *Service) DeleteAuction(ctx context.Context, rawID string) error {
	id, err := parseAuctionID(rawID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAuction(ctx, id); err != nil {
		s.log.Error().Err(err).Str("auction_id", rawID).Msg("failed to delete auction")
		return core.Internalf(err, "failed to delete auction")
	}
	s.log.Info().Str("auction_id", rawID).Msg("auction deleted")
	return nil
}

// CreateBid runs the bid acceptance protocol and publishes a BidEvent for
// the accepted bid. The publish is asynchronous and best effort.
func (s *Service) CreateBid(ctx context.Context, rawAuctionID, bidderID, rawAmount string) (*core.Bid, error) {
	auctionID, err := parseAuctionID(rawAuctionID)
	if err != nil {
		return nil, err
	}
	if err := validation.RequireID(bidderID, "bidder_id"); err != nil {
		return nil, err
	}
	amount, err := validation.Amount(rawAmount, "amount")
	if err != nil {
		return nil, err
	}

	bid, previous, err := core.AcceptBid(ctx, s.store, auctionID, bidderID, amount, s.now)
	if err != nil {
		s.log.Debug().
			Err(err).
			Str("auction_id", rawAuctionID).
			Str("bidder_id", bidderID).
			Str("amount", rawAmount).
			Msg("bid rejected")
		return nil, err
	}

	s.log.Info().
		Str("auction_id", rawAuctionID).
		Str("bid_id", bid.ID.String()).
		Str("bidder_id", bidderID).
		Str("amount", amount.String()).
		Msg("bid accepted")

	s.publishBidEvent(bid, previous)
	return bid, nil
}

// ListBids returns the auction's bids in acceptance order. A missing auction
// yields an empty list, matching the query semantics of the store.
func (s *Service) ListBids(ctx context.Context, rawAuctionID string) ([]*core.Bid, error) {
	auctionID, err := parseAuctionID(rawAuctionID)
	if err != nil {
		return nil, err
	}
	return s.store.ListBids(ctx, auctionID)
}

// GetHighestBid returns the bid with the maximum amount for the auction.
// NotFound covers both a bid-less auction and a missing one.
func (s *Service) GetHighestBid(ctx context.Context, rawAuctionID string) (*core.Bid, error) {
	auctionID, err := parseAuctionID(rawAuctionID)
	if err != nil {
		return nil, err
	}
	return s.store.HighestBid(ctx, auctionID)
}

func (s *Service) publishBidEvent(bid *core.Bid, previous decimal.Decimal) {
	event := &events.BidEvent{
		EventID:         uuid.New().String(),
		AuctionID:       bid.AuctionID.String(),
		BidID:           bid.ID.String(),
		BidderID:        bid.BidderID,
		Amount:          bid.Amount,
		PreviousHighest: previous,
		Timestamp:       bid.CreatedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.pub.PublishBidEvent(ctx, event); err != nil {
			s.log.Warn().Err(err).Str("bid_id", event.BidID).Msg("failed to publish bid event")
		}
	}()
}

func parseAuctionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.UUID{}, core.InvalidArgumentf("invalid auction id %q", raw)
	}
	return id, nil
}
