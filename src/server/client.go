package server

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// -----------------------------------------------------------------------------
// Client is one connected dashboard view
// -----------------------------------------------------------------------------

type Client struct {
	hub       *DashboardServer
	conn      *websocket.Conn
	addr      string
	connected time.Time
	send      chan any
}

func newClient(hub *DashboardServer, conn *websocket.Conn) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		addr:      conn.RemoteAddr().String(),
		connected: time.Now(),
		send:      make(chan any, sendBuffer),
	}
}

// -----------------------------------------------------------------------------

// readPump applies client commands and doubles as the liveness watchdog
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
		c.hub.Logger.Info("View %s disconnected after %v", c.addr, time.Since(c.connected).Round(time.Second))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Warning("View %s read error: %v", c.addr, err)
			}
			return
		}
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------

// trySend queues a direct reply, dropping it when the buffer is full or the
// hub already closed the channel
func (c *Client) trySend(message any) {
	defer func() {
		_ = recover()
	}()
	select {
	case c.send <- message:
	default:
		c.hub.Logger.Debug("Dropped reply for slow view %s", c.addr)
	}
}

// -----------------------------------------------------------------------------

// writePump serializes queued snapshots and replies, pinging on idle
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub dropped this view
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("View %s write error: %v", c.addr, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
