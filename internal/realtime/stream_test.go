package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"auction-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestStream_SendsSnapshotThenEvents(t *testing.T) {
	hub := NewHub(8)
	auction := &models.Auction{ID: uuid.New(), CurrentPrice: decimal.NewFromInt(1000), Status: models.AuctionActive}
	subscribed := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		sub := hub.Subscribe(auction.ID)
		defer sub.Close()
		close(subscribed)

		first := SnapshotEvent(auction)
		Stream(r.Context(), conn, sub, &first, StreamOptions{PingInterval: time.Minute})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var snapshot Event
	require.NoError(t, wsjson.Read(ctx, conn, &snapshot))
	assert.Equal(t, EventSnapshot, snapshot.Type)
	assert.True(t, snapshot.CurrentPrice.Equal(decimal.NewFromInt(1000)))

	<-subscribed
	require.NoError(t, hub.Publish(ctx, bidEvent(auction.ID, 1200)))

	var ev Event
	require.NoError(t, wsjson.Read(ctx, conn, &ev))
	assert.Equal(t, EventBidPlaced, ev.Type)
	assert.True(t, ev.CurrentPrice.Equal(decimal.NewFromInt(1200)))
}

func TestIsNormalClose(t *testing.T) {
	assert.True(t, IsNormalClose(nil))
	assert.True(t, IsNormalClose(context.Canceled))
	assert.False(t, IsNormalClose(assert.AnError))
}

func TestStream_SkipsStaleBids(t *testing.T) {
	hub := NewHub(8)
	auctionID := uuid.New()
	subscribed := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		sub := hub.Subscribe(auctionID)
		defer sub.Close()
		close(subscribed)

		Stream(r.Context(), conn, sub, nil, StreamOptions{PingInterval: time.Minute})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	<-subscribed
	require.NoError(t, hub.Publish(ctx, bidEvent(auctionID, 1500)))
	require.NoError(t, hub.Publish(ctx, bidEvent(auctionID, 1300)))
	require.NoError(t, hub.Publish(ctx, bidEvent(auctionID, 1600)))

	var prices []int64
	for i := 0; i < 2; i++ {
		var ev Event
		require.NoError(t, wsjson.Read(ctx, conn, &ev))
		prices = append(prices, ev.CurrentPrice.IntPart())
	}
	assert.Equal(t, []int64{1500, 1600}, prices)
}
