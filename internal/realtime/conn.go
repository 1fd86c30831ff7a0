package realtime

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const DefaultPingInterval = 30 * time.Second

// Serve pushes a sync frame and then every change of sub to conn until the
// peer goes away, ctx ends or the subscription is closed. Inbound messages
// are discarded.
func Serve(ctx context.Context, conn *ws.Conn, sub *Subscription, pingInterval time.Duration) error {
	if pingInterval <= 0 {
		pingInterval = DefaultPingInterval
	}

	ctx = conn.CloseRead(ctx)

	if err := writeFrame(ctx, conn, SyncFrame()); err != nil {
		return err
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-sub.C():
			if !ok {
				return conn.Close(ws.StatusGoingAway, "subscription closed")
			}
			if err := writeFrame(ctx, conn, ChangeFrame(change)); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeFrame(ctx context.Context, conn *ws.Conn, f Frame) error {
	data, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	return conn.Write(ctx, ws.MessageText, data)
}
