package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"auction-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bidEvent(auctionID uuid.UUID, amount int64) Event {
	return BidPlacedEvent(models.Bid{
		ID:        uuid.New(),
		AuctionID: auctionID,
		BidderID:  uuid.New(),
		Amount:    decimal.NewFromInt(amount),
		BidTime:   time.Now().UTC(),
	})
}

func TestHub_DeliversOnlyToAuctionSubscribers(t *testing.T) {
	hub := NewHub(4)
	a, b := uuid.New(), uuid.New()

	subA1 := hub.Subscribe(a)
	subA2 := hub.Subscribe(a)
	subB := hub.Subscribe(b)
	defer subA1.Close()
	defer subA2.Close()
	defer subB.Close()

	require.NoError(t, hub.Publish(context.Background(), bidEvent(a, 1200)))

	for _, sub := range []*Subscription{subA1, subA2} {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, EventBidPlaced, ev.Type)
			assert.True(t, ev.CurrentPrice.Equal(decimal.NewFromInt(1200)))
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
	assert.Empty(t, subB.Events())
}

func TestHub_SlowSubscriberDropsWithoutBlocking(t *testing.T) {
	hub := NewHub(2)
	id := uuid.New()
	slow := hub.Subscribe(id)
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		for i := int64(1); i <= 5; i++ {
			hub.Publish(context.Background(), bidEvent(id, 1000+i))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Equal(t, uint64(3), hub.Dropped())
	assert.Len(t, slow.Events(), 2)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	hub := NewHub(1)
	id := uuid.New()
	sub := hub.Subscribe(id)
	assert.Equal(t, 1, hub.SubscriberCount(id))

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.SubscriberCount(id))

	_, open := <-sub.Events()
	assert.False(t, open)

	// publishing after close must not panic
	require.NoError(t, hub.Publish(context.Background(), bidEvent(id, 10)))
}

func TestHub_ConcurrentPublishAndClose(t *testing.T) {
	hub := NewHub(8)
	id := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		sub := hub.Subscribe(id)
		go func() {
			defer wg.Done()
			for j := int64(0); j < 50; j++ {
				hub.Publish(context.Background(), bidEvent(id, j+1))
			}
		}()
		go func() {
			defer wg.Done()
			sub.Close()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, hub.SubscriberCount(id))
}

func TestPriceTracker_FoldsWithMax(t *testing.T) {
	tracker := NewPriceTracker()
	id := uuid.New()

	_, ok := tracker.Current(id)
	assert.False(t, ok)

	for _, amount := range []int64{1200, 1500, 1300} {
		tracker.Observe(bidEvent(id, amount))
	}
	got, ok := tracker.Current(id)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(1500)))
}

func TestRedisBroadcaster_DeliverForwardsToHub(t *testing.T) {
	hub := NewHub(4)
	id := uuid.New()
	sub := hub.Subscribe(id)
	defer sub.Close()

	b := NewRedisBroadcaster(nil, hub)
	payload, err := json.Marshal(bidEvent(id, 2000))
	require.NoError(t, err)

	b.deliver("not json")
	b.deliver(string(payload))

	select {
	case ev := <-sub.Events():
		assert.Equal(t, id, ev.AuctionID)
		require.NotNil(t, ev.Bid)
		assert.True(t, ev.Bid.Amount.Equal(decimal.NewFromInt(2000)))
	case <-time.After(time.Second):
		t.Fatal("relay did not deliver event")
	}
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("7d3f1c2a-0000-4000-8000-000000000001")
	assert.Equal(t, "auction:7d3f1c2a-0000-4000-8000-000000000001", Channel(id))
}
