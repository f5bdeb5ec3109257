// Package pgstore implements the core.Store contract on PostgreSQL. The bid
// commit runs as one transaction with a conditional highest-bid update, so
// per-auction serialization is delegated to the database's row versioning.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Ragnarsss/auction-ms/core"
)

type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL, verifies the connection, and configures the
// pool.
func Open(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Store{db: db}, nil
}

// InitSchema creates the auction and bid tables. Status and currency are
// stored as their string forms behind CHECK constraints; deleting an auction
// cascades to its bids.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS auction (
		id UUID PRIMARY KEY,
		seller_id VARCHAR(255) NOT NULL,
		item_id VARCHAR(255) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		category VARCHAR(255) NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		base_price DECIMAL NOT NULL,
		min_bid_increment DECIMAL NOT NULL,
		highest_bid DECIMAL,
		status VARCHAR(50) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending', 'active', 'completed', 'cancelled')),
		currency VARCHAR(3) NOT NULL DEFAULT 'USD'
			CHECK (currency IN ('USD', 'EUR', 'CLP', 'ARS', 'BRL', 'MXN'))
	);

	CREATE TABLE IF NOT EXISTS bid (
		id UUID PRIMARY KEY,
		auction_id UUID NOT NULL REFERENCES auction(id) ON DELETE CASCADE,
		bidder_id VARCHAR(255) NOT NULL,
		amount DECIMAL NOT NULL,
		created_at TIMESTAMP NOT NULL,
		status VARCHAR(50) NOT NULL DEFAULT 'active'
	);

	CREATE INDEX IF NOT EXISTS idx_bid_auction_id ON bid(auction_id);
	CREATE INDEX IF NOT EXISTS idx_bid_created_at ON bid(created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) InsertAuction(ctx context.Context, a *core.Auction) error {
	query := `
		INSERT INTO auction (id, seller_id, item_id, title, description, category,
			start_time, end_time, base_price, min_bid_increment, highest_bid, status, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.SellerID, a.ItemID, a.Title, a.Description, a.Category,
		a.StartTime, a.EndTime, a.BasePrice, a.MinBidIncrement, a.HighestBid,
		a.Status.String(), a.Currency.String(),
	)
	if err != nil {
		return core.Internalf(err, "failed to insert auction")
	}
	return nil
}

func (s *Store) GetAuction(ctx context.Context, id uuid.UUID) (*core.Auction, error) {
	row := s.db.QueryRowContext(ctx, auctionSelect+` WHERE id = $1`, id)
	a, err := scanAuction(row)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("auction %s not found", id)
	}
	if err != nil {
		return nil, core.Internalf(err, "failed to load auction")
	}
	return a, nil
}

func (s *Store) ListAuctions(ctx context.Context) ([]*core.Auction, error) {
	rows, err := s.db.QueryContext(ctx, auctionSelect+` ORDER BY id`)
	if err != nil {
		return nil, core.Internalf(err, "failed to list auctions")
	}
	defer rows.Close()

	var out []*core.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, core.Internalf(err, "failed to scan auction")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Internalf(err, "failed to list auctions")
	}
	return out, nil
}

func (s *Store) UpdateAuction(ctx context.Context, a *core.Auction) error {
	query := `
		UPDATE auction
		SET seller_id = $2, item_id = $3, title = $4, description = $5, category = $6,
			start_time = $7, end_time = $8, base_price = $9, min_bid_increment = $10,
			highest_bid = $11, status = $12, currency = $13
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		a.ID, a.SellerID, a.ItemID, a.Title, a.Description, a.Category,
		a.StartTime, a.EndTime, a.BasePrice, a.MinBidIncrement, a.HighestBid,
		a.Status.String(), a.Currency.String(),
	)
	if err != nil {
		return core.Internalf(err, "failed to update auction")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return core.Internalf(err, "failed to update auction")
	}
	if rows == 0 {
		return core.NotFoundf("auction %s not found", a.ID)
	}
	return nil
}

func (s *Store) DeleteAuction(ctx context.Context, id uuid.UUID) error {
	// Bids go with the auction through the cascade FK. A missing id is an
	// ack, not an error.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM auction WHERE id = $1`, id); err != nil {
		return core.Internalf(err, "failed to delete auction")
	}
	return nil
}

func (s *Store) ListBids(ctx context.Context, auctionID uuid.UUID) ([]*core.Bid, error) {
	return s.queryBids(ctx, bidSelect+` WHERE auction_id = $1 ORDER BY created_at ASC`, auctionID)
}

func (s *Store) ListBidsNewestFirst(ctx context.Context, auctionID uuid.UUID) ([]*core.Bid, error) {
	return s.queryBids(ctx, bidSelect+` WHERE auction_id = $1 ORDER BY created_at DESC`, auctionID)
}

func (s *Store) HighestBid(ctx context.Context, auctionID uuid.UUID) (*core.Bid, error) {
	row := s.db.QueryRowContext(ctx, bidSelect+` WHERE auction_id = $1 ORDER BY amount DESC LIMIT 1`, auctionID)
	b, err := scanBid(row)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("auction %s has no bids", auctionID)
	}
	if err != nil {
		return nil, core.Internalf(err, "failed to load highest bid")
	}
	return b, nil
}

// CommitBid inserts the bid and raises the auction's highest bid in one
// transaction. The update is conditioned on the highest bid the caller
// observed; zero affected rows means another bid landed first (or the
// auction vanished) and nothing is committed.
func (s *Store) CommitBid(ctx context.Context, bid *core.Bid, observed decimal.NullDecimal) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Internalf(err, "failed to begin bid transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE auction SET highest_bid = $1
		WHERE id = $2 AND highest_bid IS NOT DISTINCT FROM $3
	`, bid.Amount, bid.AuctionID, observed)
	if err != nil {
		return core.Internalf(err, "failed to update highest bid")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return core.Internalf(err, "failed to update highest bid")
	}
	if rows == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM auction WHERE id = $1)`, bid.AuctionID).Scan(&exists); err != nil {
			return core.Internalf(err, "failed to check auction")
		}
		if !exists {
			return core.NotFoundf("auction %s not found", bid.AuctionID)
		}
		return core.ErrStaleHighestBid
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bid (id, auction_id, bidder_id, amount, created_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, bid.ID, bid.AuctionID, bid.BidderID, bid.Amount, bid.CreatedAt, bid.Status.String())
	if err != nil {
		return core.Internalf(err, "failed to insert bid")
	}

	if err := tx.Commit(); err != nil {
		return core.Internalf(err, "failed to commit bid")
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const auctionSelect = `
	SELECT id, seller_id, item_id, title, description, category,
		start_time, end_time, base_price, min_bid_increment, highest_bid, status, currency
	FROM auction`

const bidSelect = `
	SELECT id, auction_id, bidder_id, amount, created_at, status
	FROM bid`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*core.Auction, error) {
	var (
		a        core.Auction
		status   string
		currency string
	)
	err := row.Scan(&a.ID, &a.SellerID, &a.ItemID, &a.Title, &a.Description, &a.Category,
		&a.StartTime, &a.EndTime, &a.BasePrice, &a.MinBidIncrement, &a.HighestBid,
		&status, &currency)
	if err != nil {
		return nil, err
	}
	if a.Status, err = core.ParseStatus(status); err != nil {
		return nil, err
	}
	if a.Currency, err = core.ParseCurrency(currency); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanBid(row rowScanner) (*core.Bid, error) {
	var (
		b      core.Bid
		status string
	)
	err := row.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.CreatedAt, &status)
	if err != nil {
		return nil, err
	}
	// Only active bids are produced today; tolerate the stored string.
	b.Status = core.BidActive
	return &b, nil
}

func (s *Store) queryBids(ctx context.Context, query string, auctionID uuid.UUID) ([]*core.Bid, error) {
	rows, err := s.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, core.Internalf(err, "failed to query bids")
	}
	defer rows.Close()

	var out []*core.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, core.Internalf(err, "failed to scan bid")
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Internalf(err, "failed to query bids")
	}
	return out, nil
}
