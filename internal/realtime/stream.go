package realtime

import (
	"context"
	"errors"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type StreamOptions struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 20 * time.Second
	}
	return o
}

// Stream writes first and then every event of sub to conn as JSON text
// frames. It returns when ctx ends, the peer goes away or the subscription is
// closed. Bid events older than the price already sent are skipped. The
// caller owns sub and conn.
func Stream(ctx context.Context, conn *websocket.Conn, sub *Subscription, first *Event, opts StreamOptions) error {
	opts = opts.withDefaults()
	tracker := NewPriceTracker()

	// Clients never send; CloseRead handles control frames and cancels ctx
	// when the peer closes.
	ctx = conn.CloseRead(ctx)

	if first != nil {
		tracker.Observe(*first)
		if err := writeEvent(ctx, conn, *first, opts.WriteTimeout); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, opts.WriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if stale(tracker, ev) {
				continue
			}
			if err := writeEvent(ctx, conn, ev, opts.WriteTimeout); err != nil {
				return err
			}
		}
	}
}

func stale(tracker *PriceTracker, ev Event) bool {
	if ev.Type != EventBidPlaced {
		tracker.Observe(ev)
		return false
	}
	if cur, ok := tracker.Current(ev.AuctionID); ok && ev.CurrentPrice.LessThan(cur) {
		return true
	}
	tracker.Observe(ev)
	return false
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev Event, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}

// IsNormalClose reports whether err is an expected end of a stream.
func IsNormalClose(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
