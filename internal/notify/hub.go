package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Message is the wire format pushed to observers.
type Message struct {
	Event string  `json:"event"`
	Data  Payload `json:"data"`
}

type Payload struct {
	OrderID int64 `json:"orderId,omitempty"`
	TableID int64 `json:"tableId,omitempty"`
}

// joinMessage is the only message observers send: it names their role channel.
type joinMessage struct {
	Event string `json:"event"`
	Role  string `json:"role"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	role string
	once sync.Once
}

// Hub tracks connected websocket observers of this process and broadcasts
// every event to all of them. Roles are recorded from join messages but do
// not filter delivery.
type Hub struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub accepts connections from the given origins; an empty list accepts any origin.
func NewHub(log *zap.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		log:     log.Named("hub"),
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeWS upgrades the request and registers the connection. role is the
// initial channel; a join message may replace it.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, role string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer), role: role}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Debug("observer connected", zap.String("role", role), zap.String("remote", r.RemoteAddr))

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast implements Sink. Slow observers whose buffer is full are disconnected.
func (h *Hub) Broadcast(_ context.Context, ev orders.Event) error {
	b, err := json.Marshal(Message{Event: ev.Name, Data: Payload{OrderID: ev.OrderID, TableID: ev.TableID}})
	if err != nil {
		return err
	}
	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range slow {
		h.log.Warn("observer too slow, disconnecting", zap.String("role", h.roleOf(c)))
		h.remove(c)
	}
	return nil
}

// Clients returns the number of connected observers, optionally by role.
func (h *Hub) Clients(role string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if role == "" {
		return len(h.clients)
	}
	n := 0
	for c := range h.clients {
		if c.role == role {
			n++
		}
	}
	return n
}

// Close disconnects every observer.
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	for _, c := range all {
		h.remove(c)
	}
}

func (h *Hub) roleOf(c *client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.role
}

func (h *Hub) remove(c *client) {
	c.once.Do(func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(c.send)
	})
}

func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var m joinMessage
		if err := c.conn.ReadJSON(&m); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("observer read failed", zap.Error(err))
			}
			return
		}
		if m.Event == "join" && m.Role != "" {
			h.mu.Lock()
			c.role = m.Role
			h.mu.Unlock()
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
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
				h.remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
