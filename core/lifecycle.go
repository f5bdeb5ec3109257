package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuctionUpdate is a partial field set applied to an existing auction. Nil
// fields are left untouched. Status, when present, is applied last so its
// activation side effect wins over an explicitly supplied start time, which
// is the behavior the rest of the system depends on.
type AuctionUpdate struct {
	Title           *string
	Description     *string
	Category        *string
	StartTime       *time.Time
	EndTime         *time.Time
	BasePrice       *decimal.Decimal
	MinBidIncrement *decimal.Decimal
	HighestBid      *decimal.Decimal
	Currency        *Currency
	Status          *Status
}

// Transition moves the auction to the requested status.
//
// Activation resets the bidding window: any transition to StatusActive stamps
// StartTime with now, regardless of the previously configured start. All
// other target statuses are applied with no field side effects. The closed
// status set is the only guard; no transition between members is rejected,
// including out of Completed or Cancelled.
func Transition(a *Auction, requested Status, now time.Time) {
	if requested == StatusActive {
		a.StartTime = now
	}
	a.Status = requested
}

// ApplyUpdate applies upd to a field by field. Each field is independent: a
// status change and metadata changes in the same update are both applied,
// with Transition running last.
func ApplyUpdate(a *Auction, upd AuctionUpdate, now time.Time) {
	if upd.Title != nil {
		a.Title = *upd.Title
	}
	if upd.Description != nil {
		a.Description = *upd.Description
	}
	if upd.Category != nil {
		a.Category = *upd.Category
	}
	if upd.StartTime != nil {
		a.StartTime = *upd.StartTime
	}
	if upd.EndTime != nil {
		a.EndTime = *upd.EndTime
	}
	if upd.BasePrice != nil {
		a.BasePrice = *upd.BasePrice
	}
	if upd.MinBidIncrement != nil {
		a.MinBidIncrement = *upd.MinBidIncrement
	}
	if upd.HighestBid != nil {
		a.HighestBid = decimal.NullDecimal{Decimal: *upd.HighestBid, Valid: true}
	}
	if upd.Currency != nil {
		a.Currency = *upd.Currency
	}
	if upd.Status != nil {
		Transition(a, *upd.Status, now)
	}
}
