package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Ragnarsss/auction-ms/core"
	"github.com/Ragnarsss/auction-ms/events"
	"github.com/Ragnarsss/auction-ms/store/memstore"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// capturePublisher records published events on a channel so tests can wait
// for the asynchronous publish.
type capturePublisher struct {
	events chan *events.BidEvent
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{events: make(chan *events.BidEvent, 8)}
}

func (p *capturePublisher) PublishBidEvent(_ context.Context, e *events.BidEvent) error {
	p.events <- e
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestService(t *testing.T) (*Service, *memstore.Store, *capturePublisher) {
	t.Helper()
	store := memstore.New()
	pub := newCapturePublisher()
	svc := NewWithClock(store, pub, zerolog.Nop(), func() time.Time { return testNow })
	return svc, store, pub
}

func validCreateInput() CreateAuctionInput {
	return CreateAuctionInput{
		SellerID:        "seller-1",
		ItemID:          "item-1",
		Title:           "vintage synth",
		Description:     "mono, serviced",
		Category:        "music",
		StartTime:       testNow.Add(time.Hour),
		EndTime:         testNow.Add(25 * time.Hour),
		BasePrice:       "100.00",
		MinBidIncrement: "10.00",
		Currency:        "EUR",
	}
}

func TestCreateAuction(t *testing.T) {
	svc, _, _ := newTestService(t)

	a, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)
	check.Equal(t, core.StatusPending, a.Status)
	check.Equal(t, core.CurrencyEUR, a.Currency)
	check.False(t, a.HighestBid.Valid)
	check.NotEqual(t, uuid.UUID{}, a.ID)
}

func TestCreateAuction_EmptyCurrencyDefaultsToUSD(t *testing.T) {
	svc, _, _ := newTestService(t)

	in := validCreateInput()
	in.Currency = ""
	a, err := svc.CreateAuction(context.Background(), in)
	assert.NoError(t, err)
	check.Equal(t, core.CurrencyUSD, a.Currency)
}

func TestCreateAuction_ValidatorFailures(t *testing.T) {
	svc, _, _ := newTestService(t)

	mutations := map[string]func(*CreateAuctionInput){
		"empty seller":        func(in *CreateAuctionInput) { in.SellerID = "" },
		"empty item":          func(in *CreateAuctionInput) { in.ItemID = "" },
		"whitespace category": func(in *CreateAuctionInput) { in.Category = "  " },
		"bad base price":      func(in *CreateAuctionInput) { in.BasePrice = "not-a-number" },
		"empty increment":     func(in *CreateAuctionInput) { in.MinBidIncrement = "" },
		"unknown currency":    func(in *CreateAuctionInput) { in.Currency = "GBP" },
		"start in past":       func(in *CreateAuctionInput) { in.StartTime = testNow.Add(-time.Hour) },
		"start after end":     func(in *CreateAuctionInput) { in.StartTime = in.EndTime.Add(time.Hour) },
	}
	for name, mutate := range mutations {
		in := validCreateInput()
		mutate(&in)
		_, err := svc.CreateAuction(context.Background(), in)
		check.Error(t, err)
		check.Equal(t, core.KindInvalidArgument, core.KindOf(err))
		if core.KindOf(err) != core.KindInvalidArgument {
			t.Logf("case %q returned %v", name, err)
		}
	}
}

func TestGetAuction(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)

	got, err := svc.GetAuction(context.Background(), created.ID.String())
	assert.NoError(t, err)
	check.Equal(t, created.ID, got.ID)
	check.Equal(t, 0, len(got.Bids))

	_, err = svc.GetAuction(context.Background(), uuid.New().String())
	check.Equal(t, core.KindNotFound, core.KindOf(err))

	_, err = svc.GetAuction(context.Background(), "not-a-uuid")
	check.Equal(t, core.KindInvalidArgument, core.KindOf(err))
}

func activate(t *testing.T, svc *Service, id string) {
	t.Helper()
	status := "active"
	_, err := svc.UpdateAuction(context.Background(), id, UpdateAuctionInput{Status: &status})
	assert.NoError(t, err)
}

func TestUpdateAuction_ActivationResetsStartTime(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)
	check.NotEqual(t, testNow, created.StartTime)

	title := "renamed"
	status := "active"
	updated, err := svc.UpdateAuction(context.Background(), created.ID.String(), UpdateAuctionInput{
		Title:  &title,
		Status: &status,
	})
	assert.NoError(t, err)
	check.Equal(t, core.StatusActive, updated.Status)
	check.Equal(t, testNow, updated.StartTime)
	check.Equal(t, "renamed", updated.Title)
}

func TestUpdateAuction_BadEnum(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)

	bad := "finished"
	_, err = svc.UpdateAuction(context.Background(), created.ID.String(), UpdateAuctionInput{Status: &bad})
	check.Equal(t, core.KindInvalidArgument, core.KindOf(err))

	badCur := "YEN"
	_, err = svc.UpdateAuction(context.Background(), created.ID.String(), UpdateAuctionInput{Currency: &badCur})
	check.Equal(t, core.KindInvalidArgument, core.KindOf(err))

	_, err = svc.UpdateAuction(context.Background(), uuid.New().String(), UpdateAuctionInput{})
	check.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestDeleteAuction(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)

	check.NoError(t, svc.DeleteAuction(context.Background(), created.ID.String()))
	_, err = svc.GetAuction(context.Background(), created.ID.String())
	check.Equal(t, core.KindNotFound, core.KindOf(err))

	// Deleting an id that never existed still acks.
	check.NoError(t, svc.DeleteAuction(context.Background(), uuid.New().String()))
}

func TestCreateBid_FullFlow(t *testing.T) {
	svc, _, pub := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)
	activate(t, svc, created.ID.String())

	bid, err := svc.CreateBid(context.Background(), created.ID.String(), "bidder-1", "100.00")
	assert.NoError(t, err)
	check.True(t, bid.Amount.Equal(decimal.RequireFromString("100.00")))

	select {
	case event := <-pub.events:
		check.Equal(t, bid.ID.String(), event.BidID)
		check.Equal(t, created.ID.String(), event.AuctionID)
		check.True(t, event.PreviousHighest.Equal(decimal.Zero))
	case <-time.After(time.Second):
		t.Fatal("no bid event published")
	}

	got, err := svc.GetAuction(context.Background(), created.ID.String())
	assert.NoError(t, err)
	check.True(t, got.HighestBid.Decimal.Equal(decimal.RequireFromString("100.00")))
	check.Equal(t, 1, len(got.Bids))
}

func TestCreateBid_Failures(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)

	// Auction still pending.
	_, err = svc.CreateBid(context.Background(), created.ID.String(), "bidder-1", "100.00")
	check.Equal(t, core.KindFailedPrecondition, core.KindOf(err))

	_, err = svc.CreateBid(context.Background(), created.ID.String(), "", "100.00")
	check.Equal(t, core.KindInvalidArgument, core.KindOf(err))

	_, err = svc.CreateBid(context.Background(), created.ID.String(), "bidder-1", "")
	check.Equal(t, core.KindInvalidArgument, core.KindOf(err))

	_, err = svc.CreateBid(context.Background(), "nope", "bidder-1", "100.00")
	check.Equal(t, core.KindInvalidArgument, core.KindOf(err))

	_, err = svc.CreateBid(context.Background(), uuid.New().String(), "bidder-1", "100.00")
	check.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestListAuctions_BidsNewestFirst(t *testing.T) {
	svc, store, _ := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)
	activate(t, svc, created.ID.String())

	// Two bids at distinct instants.
	_, err = svc.CreateBid(context.Background(), created.ID.String(), "bidder-1", "100.00")
	assert.NoError(t, err)
	later := NewWithClock(store, events.NopPublisher{}, zerolog.Nop(), func() time.Time { return testNow.Add(time.Minute) })
	second, err := later.CreateBid(context.Background(), created.ID.String(), "bidder-2", "120.00")
	assert.NoError(t, err)

	all, err := svc.ListAuctions(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, len(all))
	assert.Equal(t, 2, len(all[0].Bids))
	check.Equal(t, second.ID, all[0].Bids[0].ID)

	// ListBids keeps acceptance order.
	asc, err := svc.ListBids(context.Background(), created.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(asc))
	check.Equal(t, second.ID, asc[1].ID)
}

func TestGetHighestBid_MergedNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	created, err := svc.CreateAuction(context.Background(), validCreateInput())
	assert.NoError(t, err)

	// A bid-less auction and a missing auction produce the same NotFound.
	_, err = svc.GetHighestBid(context.Background(), created.ID.String())
	check.Equal(t, core.KindNotFound, core.KindOf(err))

	_, err = svc.GetHighestBid(context.Background(), uuid.New().String())
	check.Equal(t, core.KindNotFound, core.KindOf(err))

	activate(t, svc, created.ID.String())
	_, err = svc.CreateBid(context.Background(), created.ID.String(), "bidder-1", "100.00")
	assert.NoError(t, err)
	top, err := svc.CreateBid(context.Background(), created.ID.String(), "bidder-2", "150.00")
	assert.NoError(t, err)

	highest, err := svc.GetHighestBid(context.Background(), created.ID.String())
	assert.NoError(t, err)
	check.Equal(t, top.ID, highest.ID)
}
