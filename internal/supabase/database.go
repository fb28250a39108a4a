package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/lifecycle"
	"auction-backend/internal/models"
	"auction-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DatabaseClient is the Postgres-backed repository.Store. It talks to the
// Supabase database directly over lib/pq with the service connection string.
type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing pool.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

// DB exposes the pool so migrations can share it.
func (d *DatabaseClient) DB() *sql.DB {
	return d.db
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

var auctionColumnNames = []string{
	"id", "title", "description", "image_url", "starting_price", "current_price",
	"start_time", "end_time", "status", "approval_status", "approved_at", "approved_by",
	"rejection_reason", "seller_id", "winner_id", "payment_status", "category_id",
	"last_bid_at", "created_at", "updated_at",
}

func auctionColumns(alias string) string {
	if alias == "" {
		return strings.Join(auctionColumnNames, ", ")
	}
	cols := make([]string, len(auctionColumnNames))
	for i, c := range auctionColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanAuction reads the auctionColumns projection followed by any extra columns.
func scanAuction(row rowScanner, extra ...any) (*models.Auction, error) {
	var (
		a               models.Auction
		description     sql.NullString
		imageURL        sql.NullString
		approvedAt      sql.NullTime
		approvedBy      uuid.NullUUID
		rejectionReason sql.NullString
		winnerID        uuid.NullUUID
		categoryID      uuid.NullUUID
		lastBidAt       sql.NullTime
	)
	dest := []any{
		&a.ID, &a.Title, &description, &imageURL, &a.StartingPrice, &a.CurrentPrice,
		&a.StartTime, &a.EndTime, &a.Status, &a.ApprovalStatus, &approvedAt, &approvedBy,
		&rejectionReason, &a.SellerID, &winnerID, &a.PaymentStatus, &categoryID,
		&lastBidAt, &a.CreatedAt, &a.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	a.Description = description.String
	a.ImageURL = imageURL.String
	a.RejectionReason = rejectionReason.String
	if approvedAt.Valid {
		a.ApprovedAt = &approvedAt.Time
	}
	if approvedBy.Valid {
		a.ApprovedBy = &approvedBy.UUID
	}
	if winnerID.Valid {
		a.WinnerID = &winnerID.UUID
	}
	if categoryID.Valid {
		a.CategoryID = &categoryID.UUID
	}
	if lastBidAt.Valid {
		a.LastBidAt = &lastBidAt.Time
	}
	return &a, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (d *DatabaseClient) queryAuctions(ctx context.Context, query string, args ...any) ([]models.Auction, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	auctions := make([]models.Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction: %w", err)
		}
		auctions = append(auctions, *a)
	}
	return auctions, rows.Err()
}

// lockAuction reads the auction row inside tx and holds it until commit.
func lockAuction(ctx context.Context, tx *sql.Tx, auctionID uuid.UUID) (*models.Auction, error) {
	a, err := scanAuction(tx.QueryRowContext(ctx,
		`SELECT `+auctionColumns("")+` FROM auctions WHERE id = $1 FOR UPDATE`, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("auction %s not found", auctionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock auction: %w", err)
	}
	return a, nil
}

func (d *DatabaseClient) CreateAuction(ctx context.Context, auction *models.Auction) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO auctions (id, title, description, image_url, starting_price, current_price,
			start_time, end_time, status, approval_status, seller_id, payment_status, category_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, auction.ID, auction.Title, auction.Description, auction.ImageURL, auction.StartingPrice,
		auction.CurrentPrice, auction.StartTime, auction.EndTime, auction.Status,
		auction.ApprovalStatus, auction.SellerID, auction.PaymentStatus, nullUUID(auction.CategoryID),
		auction.CreatedAt, auction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create auction: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	a, err := scanAuction(d.db.QueryRowContext(ctx,
		`SELECT `+auctionColumns("")+` FROM auctions WHERE id = $1`, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("auction %s not found", auctionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auction: %w", err)
	}
	return a, nil
}

func (d *DatabaseClient) ListAuctions(ctx context.Context, filter models.AuctionFilter) ([]models.AuctionListing, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+auctionColumns("")+`, seller_name, bid_count
		FROM auctions_with_bid_count
		WHERE approval_status = 'approved'
		  AND ($1::uuid IS NULL OR category_id = $1)
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT NULLIF($3, 0) OFFSET $4
	`, nullUUID(filter.CategoryID), strings.TrimSpace(filter.Query), filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list auctions: %w", err)
	}
	defer rows.Close()

	listings := make([]models.AuctionListing, 0)
	for rows.Next() {
		var l models.AuctionListing
		a, err := scanAuction(rows, &l.SellerName, &l.BidCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan auction listing: %w", err)
		}
		l.Auction = *a
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (d *DatabaseClient) ListPendingAuctions(ctx context.Context) ([]models.Auction, error) {
	return d.queryAuctions(ctx, `
		SELECT `+auctionColumns("")+` FROM auctions
		WHERE approval_status = 'pending'
		ORDER BY created_at DESC
	`)
}

func (d *DatabaseClient) ListSellerAuctions(ctx context.Context, sellerID uuid.UUID) ([]models.Auction, error) {
	return d.queryAuctions(ctx, `
		SELECT `+auctionColumns("")+` FROM auctions
		WHERE seller_id = $1
		ORDER BY created_at DESC
	`, sellerID)
}

func (d *DatabaseClient) ListBidderAuctions(ctx context.Context, bidderID uuid.UUID) ([]models.Auction, error) {
	return d.queryAuctions(ctx, `
		SELECT `+auctionColumns("a")+` FROM auctions a
		WHERE a.approval_status = 'approved'
		  AND EXISTS (SELECT 1 FROM bids b WHERE b.auction_id = a.id AND b.bidder_id = $1)
		ORDER BY a.created_at DESC
	`, bidderID)
}

func (d *DatabaseClient) DecideApproval(ctx context.Context, decision models.ApprovalDecision) (*models.Auction, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	a, err := lockAuction(ctx, tx, decision.AuctionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckDecision(a); err != nil {
		return nil, err
	}
	lifecycle.ApplyDecision(a, decision)

	if _, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET approval_status = $2, approved_at = $3, approved_by = $4, rejection_reason = NULLIF($5, ''), updated_at = $6
		WHERE id = $1
	`, a.ID, a.ApprovalStatus, nullTime(a.ApprovedAt), nullUUID(a.ApprovedBy), a.RejectionReason, a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to update approval: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO admin_audit_log (id, auction_id, admin_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New(), a.ID, decision.AdminID, decision.Action, decision.Reason, decision.DecidedAt); err != nil {
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	return a, nil
}

func (d *DatabaseClient) ListAuditLog(ctx context.Context, auctionID uuid.UUID) ([]models.AuditEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, auction_id, admin_id, action, COALESCE(details, ''), created_at
		FROM admin_audit_log
		WHERE auction_id = $1
		ORDER BY created_at ASC
	`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]models.AuditEntry, 0)
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.AuctionID, &e.AdminID, &e.Action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CloseEndedAuctions completes ended auctions in one statement. The winner is
// the highest bid, earliest bid_time on ties.
func (d *DatabaseClient) CloseEndedAuctions(ctx context.Context, now time.Time) ([]models.Auction, error) {
	return d.queryAuctions(ctx, `
		UPDATE auctions a
		SET status = 'completed',
		    updated_at = $1,
		    winner_id = (
		        SELECT b.bidder_id FROM bids b
		        WHERE b.auction_id = a.id
		        ORDER BY b.amount DESC, b.bid_time ASC
		        LIMIT 1
		    )
		WHERE a.status = 'active' AND a.end_time <= $1
		RETURNING `+auctionColumns("a"), now)
}

func (d *DatabaseClient) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// PlaceBid checks and raises current_price in one conditional UPDATE that feeds
// the bid INSERT, so concurrent bids on one auction serialize on the row lock
// and only strictly higher amounts commit. bid_time comes from the database
// clock and is strictly increasing per auction. When nothing is updated the
// failure is classified from the locked row.
func (d *DatabaseClient) PlaceBid(ctx context.Context, attempt models.BidAttempt) (*models.Bid, error) {
	if attempt.BidderID == uuid.Nil {
		return nil, apperrors.ErrAuthenticationRequired
	}
	if err := lifecycle.ValidateAmount(attempt.Amount); err != nil {
		return nil, err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	bid := models.Bid{
		ID:        attempt.ID,
		AuctionID: attempt.AuctionID,
		BidderID:  attempt.BidderID,
		Amount:    attempt.Amount,
	}
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}

	err = tx.QueryRowContext(ctx, `
		WITH raised AS (
			UPDATE auctions
			SET current_price = $3,
			    last_bid_at = GREATEST(clock_timestamp(), last_bid_at + interval '1 microsecond'),
			    updated_at = clock_timestamp()
			WHERE id = $2
			  AND seller_id <> $4
			  AND approval_status = 'approved'
			  AND status = 'active'
			  AND start_time <= clock_timestamp()
			  AND end_time > clock_timestamp()
			  AND current_price < $3
			RETURNING id, last_bid_at
		)
		INSERT INTO bids (id, auction_id, bidder_id, amount, bid_time)
		SELECT $1, raised.id, $4, $3, raised.last_bid_at FROM raised
		RETURNING bid_time
	`, bid.ID, bid.AuctionID, bid.Amount, bid.BidderID).Scan(&bid.BidTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, classifyRejectedBid(ctx, tx, attempt)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to place bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bid: %w", err)
	}
	return &bid, nil
}

func classifyRejectedBid(ctx context.Context, tx *sql.Tx, attempt models.BidAttempt) error {
	a, err := lockAuction(ctx, tx, attempt.AuctionID)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckBid(a, attempt); err != nil {
		return err
	}
	// The application clock still sees the window open but the database does not.
	return apperrors.New(apperrors.KindAuctionNotBiddable, "auction is not accepting bids")
}

func (d *DatabaseClient) ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, auction_id, bidder_id, amount, bid_time
		FROM bids
		WHERE auction_id = $1
		ORDER BY bid_time DESC
	`, auctionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	bids := make([]models.Bid, 0)
	for rows.Next() {
		var b models.Bid
		if err := rows.Scan(&b.ID, &b.AuctionID, &b.BidderID, &b.Amount, &b.BidTime); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

const paymentColumns = `id, auction_id, winner_id, amount, currency, status, provider_order_id, created_at, paid_at`

func scanPayment(row rowScanner) (*models.Payment, error) {
	var (
		p      models.Payment
		paidAt sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.AuctionID, &p.WinnerID, &p.Amount, &p.Currency, &p.Status,
		&p.ProviderOrderID, &p.CreatedAt, &paidAt); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		p.PaidAt = &paidAt.Time
	}
	return &p, nil
}

func (d *DatabaseClient) GetPendingPayment(ctx context.Context, auctionID uuid.UUID) (*models.Payment, error) {
	p, err := scanPayment(d.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE auction_id = $1 AND status = 'pending'`, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("no pending payment for auction %s", auctionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending payment: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) CreatePayment(ctx context.Context, payment *models.Payment) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, auction_id, winner_id, amount, currency, status, provider_order_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, payment.ID, payment.AuctionID, payment.WinnerID, payment.Amount, payment.Currency,
		payment.Status, payment.ProviderOrderID, payment.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create payment for auction %s: %w", payment.AuctionID, repository.ErrPaymentExists)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE auctions SET payment_status = 'pending', updated_at = $2
		WHERE id = $1 AND payment_status = 'unpaid'
	`, payment.AuctionID, payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to mark auction payment pending: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Validation("auction %s is not awaiting payment", payment.AuctionID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment: %w", err)
	}
	return nil
}

func (d *DatabaseClient) MarkPaymentPaid(ctx context.Context, providerOrderID string, paidAt time.Time) (*models.SettlementResult, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE provider_order_id = $1 FOR UPDATE`, providerOrderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("no payment for order %s", providerOrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}

	changed := p.Status != models.PaymentRecordPaid
	if changed {
		if _, err := tx.ExecContext(ctx, `
			UPDATE payments SET status = 'paid', paid_at = $2 WHERE id = $1
		`, p.ID, paidAt); err != nil {
			return nil, fmt.Errorf("failed to mark payment paid: %w", err)
		}
		p.Status = models.PaymentRecordPaid
		p.PaidAt = &paidAt
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE auctions SET payment_status = 'paid', updated_at = $2
		WHERE id = $1 AND payment_status <> 'paid'
	`, p.AuctionID, paidAt); err != nil {
		return nil, fmt.Errorf("failed to mark auction paid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}
	return &models.SettlementResult{Payment: p, Changed: changed}, nil
}

func (d *DatabaseClient) RecordWebhookEvent(ctx context.Context, event models.WebhookEvent) (bool, error) {
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO payment_webhook_events (provider_event_id, event_type, order_id, payload, received_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		ON CONFLICT (provider_event_id) DO NOTHING
	`, event.ProviderEventID, event.EventType, event.OrderID, []byte(event.Payload), event.ReceivedAt)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	return n == 1, nil
}

const shipmentColumns = `id, auction_id, seller_id, winner_id, shipping_address, carrier, tracking_number, status, created_at, updated_at`

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var s models.Shipment
	if err := row.Scan(&s.ID, &s.AuctionID, &s.SellerID, &s.WinnerID, &s.ShippingAddress,
		&s.Carrier, &s.TrackingNumber, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertShipment holds the auction row while it re-checks the payment gate, so
// the write cannot race a state the gate did not see.
func (d *DatabaseClient) UpsertShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	a, err := lockAuction(ctx, tx, shipment.AuctionID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CheckShipmentWrite(a, shipment.SellerID); err != nil {
		return nil, err
	}

	id := shipment.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	s, err := scanShipment(tx.QueryRowContext(ctx, `
		INSERT INTO shipments (id, auction_id, seller_id, winner_id, shipping_address, carrier, tracking_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (auction_id) DO UPDATE SET
			shipping_address = EXCLUDED.shipping_address,
			carrier = EXCLUDED.carrier,
			tracking_number = EXCLUDED.tracking_number,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING `+shipmentColumns,
		id, a.ID, a.SellerID, *a.WinnerID, shipment.ShippingAddress, shipment.Carrier,
		shipment.TrackingNumber, shipment.Status, shipment.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert shipment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit shipment: %w", err)
	}
	return s, nil
}

func (d *DatabaseClient) GetShipment(ctx context.Context, auctionID uuid.UUID) (*models.Shipment, error) {
	s, err := scanShipment(d.db.QueryRowContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE auction_id = $1`, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("no shipment for auction %s", auctionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shipment: %w", err)
	}
	return s, nil
}

func (d *DatabaseClient) ListShipments(ctx context.Context, auctionIDs []uuid.UUID) ([]models.Shipment, error) {
	out := make([]models.Shipment, 0, len(auctionIDs))
	if len(auctionIDs) == 0 {
		return out, nil
	}
	ids := make([]string, len(auctionIDs))
	for i, id := range auctionIDs {
		ids[i] = id.String()
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE auction_id = ANY($1::uuid[])`, pq.StringArray(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shipment: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (d *DatabaseClient) AddToWatchlist(ctx context.Context, userID, auctionID uuid.UUID) (*models.WatchlistEntry, error) {
	var visible bool
	err := d.db.QueryRowContext(ctx,
		`SELECT approval_status = 'approved' FROM auctions WHERE id = $1`, auctionID).Scan(&visible)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !visible) {
		return nil, apperrors.NotFound("auction %s not found", auctionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check auction: %w", err)
	}

	// The no-op DO UPDATE makes RETURNING yield the existing row on conflict.
	var e models.WatchlistEntry
	err = d.db.QueryRowContext(ctx, `
		INSERT INTO watchlist (id, user_id, auction_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, auction_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, auction_id, created_at
	`, uuid.New(), userID, auctionID).Scan(&e.ID, &e.UserID, &e.AuctionID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return &e, nil
}

func (d *DatabaseClient) RemoveFromWatchlist(ctx context.Context, userID, auctionID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = $1 AND auction_id = $2`, userID, auctionID)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListWatchlist(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+auctionColumns("a")+`, w.id, w.user_id, w.created_at
		FROM watchlist w
		JOIN auctions a ON a.id = w.auction_id
		WHERE w.user_id = $1 AND a.approval_status = 'approved'
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	entries := make([]models.WatchlistEntry, 0)
	for rows.Next() {
		var e models.WatchlistEntry
		a, err := scanAuction(rows, &e.ID, &e.UserID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		e.AuctionID = a.ID
		e.Auction = a
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (d *DatabaseClient) IsWatching(ctx context.Context, userID, auctionID uuid.UUID) (bool, error) {
	var watching bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM watchlist WHERE user_id = $1 AND auction_id = $2)`,
		userID, auctionID).Scan(&watching)
	if err != nil {
		return false, fmt.Errorf("failed to check watchlist: %w", err)
	}
	return watching, nil
}

const profileColumns = `user_id, COALESCE(full_name, ''), COALESCE(phone, ''), COALESCE(address, ''),
	COALESCE(city, ''), COALESCE(state, ''), COALESCE(pincode, ''), role, created_at, updated_at`

func scanProfile(row rowScanner) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.UserID, &p.FullName, &p.Phone, &p.Address, &p.City, &p.State,
		&p.Pincode, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DatabaseClient) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(d.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("profile %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) CreateProfile(ctx context.Context, profile *models.Profile) error {
	role := profile.Role
	if role == "" {
		role = models.RoleUser
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, phone, address, city, state, pincode, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`, profile.UserID, profile.FullName, profile.Phone, profile.Address, profile.City,
		profile.State, profile.Pincode, role, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// UpsertProfile never touches role; promotion to admin happens out of band.
func (d *DatabaseClient) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	p, err := scanProfile(d.db.QueryRowContext(ctx, `
		INSERT INTO profiles (user_id, full_name, phone, address, city, state, pincode, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'user', $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			pincode = EXCLUDED.pincode,
			updated_at = EXCLUDED.updated_at
		RETURNING `+profileColumns,
		profile.UserID, profile.FullName, profile.Phone, profile.Address, profile.City,
		profile.State, profile.Pincode, profile.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var admin bool
	err := d.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE user_id = $1 AND role = 'admin')`, userID).Scan(&admin)
	if err != nil {
		return false, fmt.Errorf("failed to check admin role: %w", err)
	}
	return admin, nil
}

func (d *DatabaseClient) AnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error) {
	var o models.AnalyticsOverview
	err := d.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM auctions),
			(SELECT COUNT(*) FROM auctions WHERE status = 'active'),
			(SELECT COUNT(*) FROM auctions WHERE approval_status = 'pending'),
			(SELECT COUNT(*) FROM bids),
			COALESCE((SELECT SUM(current_price) FROM auctions WHERE status = 'completed'), 0),
			COALESCE((SELECT ROUND(AVG(current_price), 2) FROM auctions WHERE status = 'completed'), 0),
			COALESCE((SELECT 100.0 * COUNT(winner_id) / NULLIF(COUNT(*), 0) FROM auctions WHERE status = 'completed'), 0)::float8
	`).Scan(&o.TotalUsers, &o.TotalAuctions, &o.ActiveAuctions, &o.PendingApprovals, &o.TotalBids,
		&o.TotalRevenue, &o.AveragePrice, &o.CompletionRate)
	if err != nil {
		return nil, fmt.Errorf("failed to compute analytics overview: %w", err)
	}
	return &o, nil
}

func (d *DatabaseClient) TopAuctions(ctx context.Context, limit int) ([]models.TopAuction, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, title, current_price, bid_count
		FROM auctions_with_bid_count
		ORDER BY bid_count DESC, current_price DESC
		LIMIT NULLIF($1, 0)
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top auctions: %w", err)
	}
	defer rows.Close()

	top := make([]models.TopAuction, 0)
	for rows.Next() {
		var t models.TopAuction
		if err := rows.Scan(&t.AuctionID, &t.Title, &t.CurrentPrice, &t.BidCount); err != nil {
			return nil, fmt.Errorf("failed to scan top auction: %w", err)
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

// MostActiveUsers ranks bidders by bid count. total_spent sums the user's
// paid payments.
func (d *DatabaseClient) MostActiveUsers(ctx context.Context, limit int) ([]models.ActiveUser, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT b.bidder_id,
		       COALESCE(pr.full_name, ''),
		       COUNT(*) AS bid_count,
		       COALESCE((SELECT SUM(p.amount) FROM payments p
		                 WHERE p.winner_id = b.bidder_id AND p.status = 'paid'), 0)
		FROM bids b
		LEFT JOIN profiles pr ON pr.user_id = b.bidder_id
		GROUP BY b.bidder_id, pr.full_name
		ORDER BY bid_count DESC, b.bidder_id
		LIMIT NULLIF($1, 0)
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	users := make([]models.ActiveUser, 0)
	for rows.Next() {
		var u models.ActiveUser
		if err := rows.Scan(&u.UserID, &u.FullName, &u.BidCount, &u.TotalSpent); err != nil {
			return nil, fmt.Errorf("failed to scan active user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// MonthlyRevenue sums paid payments per UTC calendar month, oldest first, with
// zero rows for months without payments.
func (d *DatabaseClient) MonthlyRevenue(ctx context.Context, months int, now time.Time) ([]models.MonthlyRevenue, error) {
	if months <= 0 {
		return []models.MonthlyRevenue{}, nil
	}
	rows, err := d.db.QueryContext(ctx, `
		WITH bounds AS (
			SELECT date_trunc('month', $1::timestamptz AT TIME ZONE 'UTC') AS last_month
		)
		SELECT to_char(m.month, 'YYYY-MM'), COALESCE(SUM(p.amount), 0), COUNT(p.id)
		FROM bounds,
		     generate_series(bounds.last_month - make_interval(months => $2::int - 1), bounds.last_month, interval '1 month') AS m(month)
		LEFT JOIN payments p
		       ON p.status = 'paid'
		      AND date_trunc('month', p.paid_at AT TIME ZONE 'UTC') = m.month
		GROUP BY m.month
		ORDER BY m.month ASC
	`, now.UTC(), months)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly revenue: %w", err)
	}
	defer rows.Close()

	out := make([]models.MonthlyRevenue, 0, months)
	for rows.Next() {
		m := models.MonthlyRevenue{Revenue: decimal.Zero}
		if err := rows.Scan(&m.Month, &m.Revenue, &m.Payments); err != nil {
			return nil, fmt.Errorf("failed to scan monthly revenue: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
