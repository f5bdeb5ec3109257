// Package memstore is an in-memory implementation of the core.Store
// contract, used by tests and the standalone dev server. All records are
// copied on the way in and out so callers never share memory with the store.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ragnarsss/auction-ms/core"
)

type Store struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*core.Auction
	bids     map[uuid.UUID][]*core.Bid // auction id -> bids in acceptance order
}

func New() *Store {
	return &Store{
		auctions: make(map[uuid.UUID]*core.Auction),
		bids:     make(map[uuid.UUID][]*core.Bid),
	}
}

func (s *Store) InsertAuction(ctx context.Context, a *core.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

func (s *Store) GetAuction(ctx context.Context, id uuid.UUID) (*core.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, core.NotFoundf("auction %s not found", id)
	}
	cp := *a
	return &cp, nil
}

func (s *Store) ListAuctions(ctx context.Context) ([]*core.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		cp := *a
		out = append(out, &cp)
	}
	// Map order is not stable; present auctions deterministically.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (s *Store) UpdateAuction(ctx context.Context, a *core.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[a.ID]; !ok {
		return core.NotFoundf("auction %s not found", a.ID)
	}
	cp := *a
	s.auctions[a.ID] = &cp
	return nil
}

func (s *Store) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.auctions, id)
	delete(s.bids, id) // cascade
	return nil
}

func (s *Store) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*core.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyBids(s.bids[auctionID]), nil
}

func (s *Store) ListBidsNewestFirst(ctx context.Context, auctionID uuid.UUID) ([]*core.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := copyBids(s.bids[auctionID])
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) HighestBid(ctx context.Context, auctionID uuid.UUID) (*core.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bids := s.bids[auctionID]
	if len(bids) == 0 {
		// A missing auction and a bid-less auction are indistinguishable
		// here, matching the store contract.
		return nil, core.NotFoundf("auction %s has no bids", auctionID)
	}
	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount.GreaterThan(highest.Amount) {
			highest = b
		}
	}
	cp := *highest
	return &cp, nil
}

func (s *Store) CommitBid(ctx context.Context, bid *core.Bid, observed decimal.NullDecimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[bid.AuctionID]
	if !ok {
		return core.NotFoundf("auction %s not found", bid.AuctionID)
	}
	if !nullDecimalEqual(a.HighestBid, observed) {
		return core.ErrStaleHighestBid
	}
	cp := *bid
	s.bids[bid.AuctionID] = append(s.bids[bid.AuctionID], &cp)
	a.HighestBid = decimal.NullDecimal{Decimal: bid.Amount, Valid: true}
	return nil
}

func copyBids(bids []*core.Bid) []*core.Bid {
	out := make([]*core.Bid, len(bids))
	for i, b := range bids {
		cp := *b
		out[i] = &cp
	}
	return out
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return a.Decimal.Equal(b.Decimal)
}
