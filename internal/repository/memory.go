package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"auction-backend/internal/apperrors"
	"auction-backend/internal/lifecycle"
	"auction-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryRepo is a concurrency-safe in-memory Store. A single mutex serializes
// every write, which gives PlaceBid the same compare-and-update semantics as
// the conditional UPDATE of the Postgres store.
type MemoryRepo struct {
	mu         sync.RWMutex
	auctions   map[uuid.UUID]*models.Auction
	bids       map[uuid.UUID][]models.Bid // key: auctionID
	audit      map[uuid.UUID][]models.AuditEntry
	payments   map[string]*models.Payment // key: provider order id
	events     map[string]models.WebhookEvent
	shipments  map[uuid.UUID]*models.Shipment // key: auctionID
	watchlist  map[uuid.UUID][]models.WatchlistEntry // key: userID
	profiles   map[uuid.UUID]*models.Profile
	categories []models.Category
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		auctions:  make(map[uuid.UUID]*models.Auction),
		bids:      make(map[uuid.UUID][]models.Bid),
		audit:     make(map[uuid.UUID][]models.AuditEntry),
		payments:  make(map[string]*models.Payment),
		events:    make(map[string]models.WebhookEvent),
		shipments: make(map[uuid.UUID]*models.Shipment),
		watchlist: make(map[uuid.UUID][]models.WatchlistEntry),
		profiles:  make(map[uuid.UUID]*models.Profile),
	}
}

func (r *MemoryRepo) Close() error { return nil }

// AddCategory seeds a category. Intended for dev mode and tests.
func (r *MemoryRepo) AddCategory(c models.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, c)
}

// PutAuction stores a fully formed auction, bypassing the approval workflow.
// Intended for tests only.
func (r *MemoryRepo) PutAuction(a models.Auction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[a.ID] = &a
}

func (r *MemoryRepo) CreateAuction(ctx context.Context, auction *models.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.auctions[auction.ID]; exists {
		return fmt.Errorf("create auction %s: duplicate id", auction.ID)
	}
	a := *auction
	r.auctions[a.ID] = &a
	return nil
}

func (r *MemoryRepo) GetAuction(ctx context.Context, auctionID uuid.UUID) (*models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.auctions[auctionID]
	if !ok {
		return nil, apperrors.NotFound("auction %s not found", auctionID)
	}
	out := *a
	return &out, nil
}

func (r *MemoryRepo) ListAuctions(ctx context.Context, filter models.AuctionFilter) ([]models.AuctionListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	listings := make([]models.AuctionListing, 0)
	for _, a := range r.auctions {
		if !lifecycle.IsVisible(a) {
			continue
		}
		if filter.CategoryID != nil && (a.CategoryID == nil || *a.CategoryID != *filter.CategoryID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Title), q) && !strings.Contains(strings.ToLower(a.Description), q) {
			continue
		}
		l := models.AuctionListing{Auction: *a, BidCount: len(r.bids[a.ID])}
		if p, ok := r.profiles[a.SellerID]; ok {
			l.SellerName = p.FullName
		}
		listings = append(listings, l)
	}
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].CreatedAt.After(listings[j].CreatedAt)
	})
	return paginate(listings, filter.Offset, filter.Limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return items[:0]
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func (r *MemoryRepo) collect(keep func(a *models.Auction) bool) []models.Auction {
	out := make([]models.Auction, 0)
	for _, a := range r.auctions {
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryRepo) ListPendingAuctions(ctx context.Context) ([]models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *models.Auction) bool { return a.ApprovalStatus == models.ApprovalPending }), nil
}

func (r *MemoryRepo) ListSellerAuctions(ctx context.Context, sellerID uuid.UUID) ([]models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *models.Auction) bool { return a.SellerID == sellerID }), nil
}

func (r *MemoryRepo) ListBidderAuctions(ctx context.Context, bidderID uuid.UUID) ([]models.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(a *models.Auction) bool {
		if !lifecycle.IsVisible(a) {
			return false
		}
		for _, b := range r.bids[a.ID] {
			if b.BidderID == bidderID {
				return true
			}
		}
		return false
	}), nil
}

func (r *MemoryRepo) DecideApproval(ctx context.Context, decision models.ApprovalDecision) (*models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[decision.AuctionID]
	if !ok {
		return nil, apperrors.NotFound("auction %s not found", decision.AuctionID)
	}
	if err := lifecycle.CheckDecision(a); err != nil {
		return nil, err
	}
	lifecycle.ApplyDecision(a, decision)
	r.audit[a.ID] = append(r.audit[a.ID], models.AuditEntry{
		ID:        uuid.New(),
		AuctionID: a.ID,
		AdminID:   decision.AdminID,
		Action:    decision.Action,
		Details:   decision.Reason,
		CreatedAt: decision.DecidedAt,
	})
	out := *a
	return &out, nil
}

func (r *MemoryRepo) ListAuditLog(ctx context.Context, auctionID uuid.UUID) ([]models.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.AuditEntry{}, r.audit[auctionID]...), nil
}

func (r *MemoryRepo) CloseEndedAuctions(ctx context.Context, now time.Time) ([]models.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	closed := make([]models.Auction, 0)
	for _, a := range r.auctions {
		if !lifecycle.IsEnded(a, now) {
			continue
		}
		lifecycle.Close(a, lifecycle.HighestBid(r.bids[a.ID]), now)
		closed = append(closed, *a)
	}
	return closed, nil
}

func (r *MemoryRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]models.Category{}, r.categories...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) PlaceBid(ctx context.Context, attempt models.BidAttempt) (*models.Bid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[attempt.AuctionID]
	if !ok {
		return nil, apperrors.NotFound("auction %s not found", attempt.AuctionID)
	}
	if err := lifecycle.CheckBid(a, attempt); err != nil {
		return nil, err
	}

	bidTime := lifecycle.NextBidTime(a.LastBidAt, attempt.At)
	bid := models.Bid{
		ID:        attempt.ID,
		AuctionID: a.ID,
		BidderID:  attempt.BidderID,
		Amount:    attempt.Amount,
		BidTime:   bidTime,
	}
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}

	a.CurrentPrice = attempt.Amount
	a.LastBidAt = &bidTime
	a.UpdatedAt = bidTime
	r.bids[a.ID] = append(r.bids[a.ID], bid)
	return &bid, nil
}

func (r *MemoryRepo) ListBids(ctx context.Context, auctionID uuid.UUID) ([]models.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := r.bids[auctionID]
	out := make([]models.Bid, len(bids))
	// newest first
	for i, b := range bids {
		out[len(bids)-1-i] = b
	}
	return out, nil
}

func (r *MemoryRepo) GetPendingPayment(ctx context.Context, auctionID uuid.UUID) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.payments {
		if p.AuctionID == auctionID && p.Status == models.PaymentRecordPending {
			out := *p
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("no pending payment for auction %s", auctionID)
}

func (r *MemoryRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[payment.AuctionID]
	if !ok {
		return apperrors.NotFound("auction %s not found", payment.AuctionID)
	}
	for _, p := range r.payments {
		if p.AuctionID == payment.AuctionID {
			return fmt.Errorf("create payment for auction %s: %w", payment.AuctionID, ErrPaymentExists)
		}
	}
	p := *payment
	r.payments[p.ProviderOrderID] = &p
	a.PaymentStatus = models.PaymentPending
	return nil
}

func (r *MemoryRepo) MarkPaymentPaid(ctx context.Context, providerOrderID string, paidAt time.Time) (*models.SettlementResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[providerOrderID]
	if !ok {
		return nil, apperrors.NotFound("no payment for order %s", providerOrderID)
	}
	changed := p.Status != models.PaymentRecordPaid
	if changed {
		p.Status = models.PaymentRecordPaid
		at := paidAt
		p.PaidAt = &at
	}
	if a, ok := r.auctions[p.AuctionID]; ok && a.PaymentStatus != models.PaymentPaid {
		a.PaymentStatus = models.PaymentPaid
		a.UpdatedAt = paidAt
	}
	out := *p
	return &models.SettlementResult{Payment: &out, Changed: changed}, nil
}

func (r *MemoryRepo) RecordWebhookEvent(ctx context.Context, event models.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.events[event.ProviderEventID]; seen {
		return false, nil
	}
	r.events[event.ProviderEventID] = event
	return true, nil
}

func (r *MemoryRepo) UpsertShipment(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[shipment.AuctionID]
	if !ok {
		return nil, apperrors.NotFound("auction %s not found", shipment.AuctionID)
	}
	if err := lifecycle.CheckShipmentWrite(a, shipment.SellerID); err != nil {
		return nil, err
	}

	if existing, ok := r.shipments[a.ID]; ok {
		existing.ShippingAddress = shipment.ShippingAddress
		existing.Carrier = shipment.Carrier
		existing.TrackingNumber = shipment.TrackingNumber
		existing.Status = shipment.Status
		existing.UpdatedAt = shipment.UpdatedAt
		out := *existing
		return &out, nil
	}

	s := *shipment
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.WinnerID = *a.WinnerID
	r.shipments[a.ID] = &s
	out := s
	return &out, nil
}

func (r *MemoryRepo) GetShipment(ctx context.Context, auctionID uuid.UUID) (*models.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shipments[auctionID]
	if !ok {
		return nil, apperrors.NotFound("no shipment for auction %s", auctionID)
	}
	out := *s
	return &out, nil
}

func (r *MemoryRepo) ListShipments(ctx context.Context, auctionIDs []uuid.UUID) ([]models.Shipment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Shipment, 0, len(auctionIDs))
	for _, id := range auctionIDs {
		if s, ok := r.shipments[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *MemoryRepo) AddToWatchlist(ctx context.Context, userID, auctionID uuid.UUID) (*models.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.auctions[auctionID]
	if !ok || !lifecycle.IsVisible(a) {
		return nil, apperrors.NotFound("auction %s not found", auctionID)
	}
	for _, e := range r.watchlist[userID] {
		if e.AuctionID == auctionID {
			out := e
			return &out, nil
		}
	}
	entry := models.WatchlistEntry{ID: uuid.New(), UserID: userID, AuctionID: auctionID, CreatedAt: time.Now().UTC()}
	r.watchlist[userID] = append(r.watchlist[userID], entry)
	return &entry, nil
}

func (r *MemoryRepo) RemoveFromWatchlist(ctx context.Context, userID, auctionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.watchlist[userID]
	for i, e := range entries {
		if e.AuctionID == auctionID {
			r.watchlist[userID] = append(entries[:i:i], entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryRepo) ListWatchlist(ctx context.Context, userID uuid.UUID) ([]models.WatchlistEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.WatchlistEntry, 0, len(r.watchlist[userID]))
	for _, e := range r.watchlist[userID] {
		a, ok := r.auctions[e.AuctionID]
		if !ok || !lifecycle.IsVisible(a) {
			continue
		}
		ac := *a
		e.Auction = &ac
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepo) IsWatching(ctx context.Context, userID, auctionID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.watchlist[userID] {
		if e.AuctionID == auctionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	if !ok {
		return nil, apperrors.NotFound("profile %s not found", userID)
	}
	out := *p
	return &out, nil
}

func (r *MemoryRepo) CreateProfile(ctx context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.profiles[profile.UserID]; exists {
		return fmt.Errorf("create profile %s: already exists", profile.UserID)
	}
	p := *profile
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	r.profiles[p.UserID] = &p
	return nil
}

func (r *MemoryRepo) UpsertProfile(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := *profile
	if existing, ok := r.profiles[p.UserID]; ok {
		p.Role = existing.Role
		p.CreatedAt = existing.CreatedAt
	} else {
		p.Role = models.RoleUser
		p.CreatedAt = p.UpdatedAt
	}
	r.profiles[p.UserID] = &p
	out := p
	return &out, nil
}

func (r *MemoryRepo) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[userID]
	return ok && p.Role == models.RoleAdmin, nil
}

func (r *MemoryRepo) AnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o := &models.AnalyticsOverview{
		TotalUsers:    len(r.profiles),
		TotalAuctions: len(r.auctions),
		TotalRevenue:  decimal.Zero,
		AveragePrice:  decimal.Zero,
	}
	completed, won := 0, 0
	for _, a := range r.auctions {
		o.TotalBids += len(r.bids[a.ID])
		if a.ApprovalStatus == models.ApprovalPending {
			o.PendingApprovals++
		}
		switch a.Status {
		case models.AuctionActive:
			o.ActiveAuctions++
		case models.AuctionCompleted:
			completed++
			o.TotalRevenue = o.TotalRevenue.Add(a.CurrentPrice)
			if a.WinnerID != nil {
				won++
			}
		}
	}
	if completed > 0 {
		o.AveragePrice = o.TotalRevenue.Div(decimal.NewFromInt(int64(completed))).Round(2)
		o.CompletionRate = float64(won) * 100 / float64(completed)
	}
	return o, nil
}

func (r *MemoryRepo) TopAuctions(ctx context.Context, limit int) ([]models.TopAuction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	top := make([]models.TopAuction, 0, len(r.auctions))
	for _, a := range r.auctions {
		top = append(top, models.TopAuction{
			AuctionID:    a.ID,
			Title:        a.Title,
			CurrentPrice: a.CurrentPrice,
			BidCount:     len(r.bids[a.ID]),
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].BidCount != top[j].BidCount {
			return top[i].BidCount > top[j].BidCount
		}
		return top[i].CurrentPrice.GreaterThan(top[j].CurrentPrice)
	})
	return paginate(top, 0, limit), nil
}

func (r *MemoryRepo) MostActiveUsers(ctx context.Context, limit int) ([]models.ActiveUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byUser := make(map[uuid.UUID]*models.ActiveUser)
	for _, bids := range r.bids {
		for _, b := range bids {
			u, ok := byUser[b.BidderID]
			if !ok {
				u = &models.ActiveUser{UserID: b.BidderID, TotalSpent: decimal.Zero}
				if p, ok := r.profiles[b.BidderID]; ok {
					u.FullName = p.FullName
				}
				byUser[b.BidderID] = u
			}
			u.BidCount++
		}
	}
	for _, p := range r.payments {
		if u, ok := byUser[p.WinnerID]; ok && p.Status == models.PaymentRecordPaid {
			u.TotalSpent = u.TotalSpent.Add(p.Amount)
		}
	}

	users := make([]models.ActiveUser, 0, len(byUser))
	for _, u := range byUser {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].BidCount != users[j].BidCount {
			return users[i].BidCount > users[j].BidCount
		}
		return users[i].UserID.String() < users[j].UserID.String()
	})
	return paginate(users, 0, limit), nil
}

func (r *MemoryRepo) MonthlyRevenue(ctx context.Context, months int, now time.Time) ([]models.MonthlyRevenue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if months <= 0 {
		return []models.MonthlyRevenue{}, nil
	}
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	out := make([]models.MonthlyRevenue, months)
	index := make(map[string]int, months)
	for i := 0; i < months; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		out[i] = models.MonthlyRevenue{Month: key, Revenue: decimal.Zero}
		index[key] = i
	}
	for _, p := range r.payments {
		if p.Status != models.PaymentRecordPaid || p.PaidAt == nil {
			continue
		}
		if i, ok := index[p.PaidAt.UTC().Format("2006-01")]; ok {
			out[i].Revenue = out[i].Revenue.Add(p.Amount)
			out[i].Payments++
		}
	}
	return out, nil
}
