package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceTracker folds observed events with max, so events that arrive out of
// order or are dropped never move a displayed price backwards.
type PriceTracker struct {
	mu     sync.Mutex
	prices map[uuid.UUID]decimal.Decimal
}

func NewPriceTracker() *PriceTracker {
	return &PriceTracker{prices: make(map[uuid.UUID]decimal.Decimal)}
}

// Observe records ev and returns the auction's highest known price.
func (t *PriceTracker) Observe(ev Event) decimal.Decimal {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.prices[ev.AuctionID]
	if !ok || ev.CurrentPrice.GreaterThan(cur) {
		cur = ev.CurrentPrice
		t.prices[ev.AuctionID] = cur
	}
	return cur
}

func (t *PriceTracker) Current(auctionID uuid.UUID) (decimal.Decimal, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.prices[auctionID]
	return p, ok
}
