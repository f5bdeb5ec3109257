package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the auction lifecycle stage. It is a closed set: values are
// parsed case-insensitively at the transport boundary and stored as their
// lowercase string form.
type Status int

const (
	StatusPending Status = iota
	StatusActive
	StatusCompleted
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusActive:    "active",
	StatusCompleted: "completed",
	StatusCancelled: "cancelled",
}

// AllStatuses lists the valid status names in declaration order, for error
// messages and storage CHECK constraints.
func AllStatuses() []string {
	return []string{"pending", "active", "completed", "cancelled"}
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStatus maps a raw status string to its Status value,
// case-insensitively. Unknown values fail with InvalidArgument listing the
// allowed set.
func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(raw) {
	case "pending":
		return StatusPending, nil
	case "active":
		return StatusActive, nil
	case "completed":
		return StatusCompleted, nil
	case "cancelled":
		return StatusCancelled, nil
	}
	return 0, InvalidArgumentf("invalid status %q, allowed values: %s", raw, strings.Join(AllStatuses(), ", "))
}

// Currency is the auction's settlement currency, a closed set of ISO-like
// codes stored in their uppercase string form.
type Currency int

const (
	CurrencyUSD Currency = iota
	CurrencyEUR
	CurrencyCLP
	CurrencyARS
	CurrencyBRL
	CurrencyMXN
)

var currencyNames = map[Currency]string{
	CurrencyUSD: "USD",
	CurrencyEUR: "EUR",
	CurrencyCLP: "CLP",
	CurrencyARS: "ARS",
	CurrencyBRL: "BRL",
	CurrencyMXN: "MXN",
}

// AllCurrencies lists the valid currency codes in declaration order.
func AllCurrencies() []string {
	return []string{"USD", "EUR", "CLP", "ARS", "BRL", "MXN"}
}

func (c Currency) String() string {
	if name, ok := currencyNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCurrency maps a raw currency code to its Currency value,
// case-insensitively. Unknown values fail with InvalidArgument listing the
// allowed set. The empty-input-defaults-to-USD rule belongs to auction
// creation, not to parsing, so empty input is rejected here.
func ParseCurrency(raw string) (Currency, error) {
	switch strings.ToUpper(raw) {
	case "USD":
		return CurrencyUSD, nil
	case "EUR":
		return CurrencyEUR, nil
	case "CLP":
		return CurrencyCLP, nil
	case "ARS":
		return CurrencyARS, nil
	case "BRL":
		return CurrencyBRL, nil
	case "MXN":
		return CurrencyMXN, nil
	}
	return 0, InvalidArgumentf("invalid currency %q, allowed values: %s", raw, strings.Join(AllCurrencies(), ", "))
}

// BidStatus is the lifecycle stage of an accepted bid. The engine currently
// only produces BidActive; the set is reserved for superseded/withdrawn
// states.
type BidStatus int

const (
	BidActive BidStatus = iota
)

func (s BidStatus) String() string {
	if s == BidActive {
		return "active"
	}
	return "unknown"
}

// Auction is one sellable lot under timed bidding.
type Auction struct {
	ID              uuid.UUID           `json:"id"`
	SellerID        string              `json:"seller_id"`
	ItemID          string              `json:"item_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Category        string              `json:"category"`
	StartTime       time.Time           `json:"start_time"`
	EndTime         time.Time           `json:"end_time"`
	BasePrice       decimal.Decimal     `json:"base_price"`
	MinBidIncrement decimal.Decimal     `json:"min_bid_increment"`
	HighestBid      decimal.NullDecimal `json:"highest_bid"`
	Status          Status              `json:"status"`
	Currency        Currency            `json:"currency"`
}

// CurrentHighest returns the auction's highest accepted bid amount, or zero
// when no bid has been accepted yet. This is the baseline every candidate bid
// is compared against.
func (a *Auction) CurrentHighest() decimal.Decimal {
	if a.HighestBid.Valid {
		return a.HighestBid.Decimal
	}
	return decimal.Zero
}

// Bid is one accepted bid attempt. Bids are immutable once persisted and are
// removed only by their auction's cascade delete.
type Bid struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	BidderID  string          `json:"bidder_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
	Status    BidStatus       `json:"status"`
}
