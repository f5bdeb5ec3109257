package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxCommitAttempts bounds the optimistic-commit retry loop in AcceptBid. A
// bid that loses the race this many times fails with an internal error rather
// than blocking.
const maxCommitAttempts = 5

// AcceptBid runs the bid acceptance protocol for one candidate bid and
// returns the accepted Bid along with the highest bid it displaced (zero for
// the first acceptance).
//
// Processing flow:
//  1. Load the auction (NotFound when absent)
//  2. Guard status == active
//  3. Guard now within [StartTime, EndTime], boundaries inclusive
//  4. Guard amount > current highest (zero before the first acceptance)
//  5. Guard amount >= base price
//  6. Guard amount >= current highest + min bid increment
//  7. Commit: insert the Bid and raise the auction's highest bid in one
//     atomic conditional write keyed on the highest bid observed in step 4
//
// Two bids racing on the same auction can both validate against the same
// observed highest bid, so the commit is conditional: the loser's write fails
// with ErrStaleHighestBid and the protocol re-runs validation from a freshly
// loaded auction, up to maxCommitAttempts times. On any failure no partial
// state is left behind. A cancelled context aborts before commit, never
// after.
func AcceptBid(ctx context.Context, store Store, auctionID uuid.UUID, bidderID string, amount decimal.Decimal, now func() time.Time) (*Bid, decimal.Decimal, error) {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		auction, err := store.GetAuction(ctx, auctionID)
		if err != nil {
			return nil, decimal.Zero, err
		}

		observed := auction.HighestBid
		at := now()
		if err := validateBidAgainstAuction(auction, amount, at); err != nil {
			return nil, decimal.Zero, err
		}

		if err := ctx.Err(); err != nil {
			return nil, decimal.Zero, Internalf(err, "bid aborted before commit")
		}

		bid := &Bid{
			ID:        uuid.New(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: at,
			Status:    BidActive,
		}
		err = store.CommitBid(ctx, bid, observed)
		if err == nil {
			return bid, auction.CurrentHighest(), nil
		}
		if errors.Is(err, ErrStaleHighestBid) {
			// Lost the race: another bid landed between load and commit.
			// Re-validate against the new highest bid.
			continue
		}
		return nil, decimal.Zero, err
	}
	return nil, decimal.Zero, Internalf(nil, "bid commit contention exceeded %d attempts", maxCommitAttempts)
}

// validateBidAgainstAuction checks the auction-state preconditions of the bid
// acceptance protocol, in order, failing fast at the first violation.
func validateBidAgainstAuction(a *Auction, amount decimal.Decimal, now time.Time) error {
	if a.Status != StatusActive {
		return FailedPreconditionf("auction must be active to accept bids, current status: %q", a.Status)
	}
	if now.After(a.EndTime) {
		return FailedPreconditionf("auction has ended")
	}
	if now.Before(a.StartTime) {
		return FailedPreconditionf("auction has not started")
	}

	// The baseline is zero before the first acceptance, so the first bid
	// only has to clear the base price (and the increment above zero).
	current := a.CurrentHighest()
	if amount.LessThanOrEqual(current) {
		return FailedPreconditionf("bid must be greater than the current highest bid %s", current)
	}
	if amount.LessThan(a.BasePrice) {
		return FailedPreconditionf("bid must be greater than or equal to the base price %s", a.BasePrice)
	}
	if minRequired := current.Add(a.MinBidIncrement); amount.LessThan(minRequired) {
		return FailedPreconditionf("bid must be at least %s", minRequired)
	}
	return nil
}
