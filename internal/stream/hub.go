// Package stream pushes cycle batches to websocket subscribers.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/efreitasn/terminalsim/internal/domain"
	"github.com/efreitasn/terminalsim/internal/engine"
	"github.com/efreitasn/terminalsim/internal/store"
	"github.com/efreitasn/terminalsim/internal/view"
)

// Channels a subscriber can listen to.
const (
	ChannelTicks      = "ticks"
	ChannelOrders     = "orders"
	ChannelFills      = "fills"
	ChannelPositions  = "positions"
	ChannelRisk       = "risk"
	ChannelConnection = "connection"
)

var allChannels = []string{
	ChannelTicks, ChannelOrders, ChannelFills, ChannelPositions, ChannelRisk, ChannelConnection,
}

const (
	sendBuffer = 256
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Message is the envelope pushed to subscribers.
type Message struct {
	Channel string `json:"channel"`
	At      string `json:"at"`
	Data    any    `json:"data"`
}

// subscribeRequest is what a client sends to change its channels.
type subscribeRequest struct {
	Op       string   `json:"op"`
	Channels []string `json:"channels"`
}

// Recorder observes hub activity.
type Recorder interface {
	StreamClients(n int)
	StreamDropped()
}

// Hub fans cycle batches out to websocket clients. Publishing never blocks:
// a client whose buffer is full is disconnected.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	recorder Recorder
	logger   *slog.Logger
}

// NewHub creates an empty Hub. recorder may be nil.
func NewHub(logger *slog.Logger, recorder Recorder) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is enforced by the router.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		recorder: recorder,
		logger:   logger,
	}
}

var _ engine.BatchPublisher = (*Hub)(nil)

// PublishMarket implements engine.BatchPublisher.
func (h *Hub) PublishMarket(b engine.MarketBatch) {
	at := view.FormatTime(b.At)
	h.broadcast(ChannelTicks, at, view.Ticks(b.Ticks))
	if len(b.Positions) > 0 {
		h.broadcast(ChannelPositions, at, view.Positions(b.Positions))
		h.broadcast(ChannelRisk, at, view.RiskSnapshots(b.Snapshots))
	}
	h.broadcast(ChannelConnection, at, view.FromConnection(b.Connection))
}

// PublishExecution implements engine.BatchPublisher.
func (h *Hub) PublishExecution(b engine.ExecutionBatch) {
	at := view.FormatTime(b.At)
	if len(b.Orders) > 0 {
		h.broadcast(ChannelOrders, at, view.Orders(b.Orders))
	}
	if len(b.Fills) > 0 {
		h.broadcast(ChannelFills, at, view.Fills(b.Fills))
		h.broadcast(ChannelPositions, at, view.Positions(b.Positions))
		h.broadcast(ChannelRisk, at, view.RiskSnapshots(b.Snapshots))
	}
}

// PublishConnection implements engine.BatchPublisher.
func (h *Hub) PublishConnection(status store.ConnectionStatus) {
	h.Publish(ChannelConnection, status.UpdatedAt, view.FromConnection(status))
}

// Publish sends data on channel to every subscriber of that channel. It is
// used for changes made outside the scheduler, such as order entry.
func (h *Hub) Publish(channel string, at time.Time, data any) {
	h.broadcast(channel, view.FormatTime(at), data)
}

// PublishOrders pushes orders changed by order entry or edits.
func (h *Hub) PublishOrders(at time.Time, orders []*domain.Order) {
	h.broadcast(ChannelOrders, view.FormatTime(at), view.Orders(orders))
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	h.reportLocked()
}

func (h *Hub) broadcast(channel, at string, data any) {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	msg, err := json.Marshal(Message{Channel: channel, At: at, Data: data})
	if err != nil {
		h.logger.Error("stream marshal failed", "channel", channel, "error", err)
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if !c.subscribed(channel) {
			continue
		}
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		if h.unregister(c) {
			h.logger.Warn("stream client dropped", "client", c.id)
			if h.recorder != nil {
				h.recorder.StreamDropped()
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.reportLocked()
}

// unregister removes c and closes its send channel. It reports whether c
// was still registered.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	h.reportLocked()
	return true
}

func (h *Hub) reportLocked() {
	if h.recorder != nil {
		h.recorder.StreamClients(len(h.clients))
	}
}

// ServeHTTP upgrades the request to a websocket. The optional channels
// query parameter (comma separated) selects the initial subscriptions;
// without it the client receives every channel.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("stream upgrade failed", "error", err)
		return
	}

	channels := allChannels
	if q := r.URL.Query().Get("channels"); q != "" {
		channels = strings.Split(q, ",")
	}
	c := newClient(h, conn, channels)
	h.register(c)
	h.logger.Info("stream client connected", "client", c.id)

	go c.writePump()
	go c.readPump()
}

// client is one websocket subscriber.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string

	subsMu sync.RWMutex
	subs   map[string]bool
}

func newClient(h *Hub, conn *websocket.Conn, channels []string) *client {
	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		subs: make(map[string]bool, len(channels)),
	}
	if conn != nil {
		c.id = conn.RemoteAddr().String()
	}
	for _, ch := range channels {
		c.subs[strings.TrimSpace(ch)] = true
	}
	return c
}

func (c *client) subscribed(channel string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return c.subs[channel]
}

func (c *client) setSubscribed(channels []string, on bool) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range channels {
		if on {
			c.subs[ch] = true
		} else {
			delete(c.subs, ch)
		}
	}
}

// readPump handles subscribe/unsubscribe requests and detects disconnects.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("stream read error", "client", c.id, "error", err)
			}
			return
		}

		var req subscribeRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		switch req.Op {
		case "subscribe":
			c.setSubscribed(req.Channels, true)
		case "unsubscribe":
			c.setSubscribed(req.Channels, false)
		}
	}
}

// writePump delivers queued messages and keeps the connection alive.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
