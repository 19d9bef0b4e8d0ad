package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dialHub(t *testing.T, h *Hub, role string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, role)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubBroadcastsToEveryObserver(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	defer h.Close()

	kitchen := dialHub(t, h, "KITCHEN")
	waiter := dialHub(t, h, "WAITER")
	require.Eventually(t, func() bool { return h.Clients("") == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, h.Broadcast(context.Background(), orders.Event{Name: orders.EventOrderUpdated, OrderID: 7}))

	for _, c := range []*websocket.Conn{kitchen, waiter} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var m Message
		require.NoError(t, c.ReadJSON(&m))
		assert.Equal(t, orders.EventOrderUpdated, m.Event)
		assert.Equal(t, int64(7), m.Data.OrderID)
		assert.Zero(t, m.Data.TableID)
	}
}

func TestHubJoinChangesRole(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	defer h.Close()

	c := dialHub(t, h, "WAITER")
	require.Eventually(t, func() bool { return h.Clients("WAITER") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, c.WriteJSON(map[string]string{"event": "join", "role": "KITCHEN"}))
	require.Eventually(t, func() bool { return h.Clients("KITCHEN") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.Clients("WAITER"))
}

func TestHubRejectsForeignOrigin(t *testing.T) {
	h := NewHub(zap.NewNop(), []string{"http://pos.local"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(w, r, "WAITER")
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, h.Clients(""))
}

func TestHubCloseDisconnects(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	c := dialHub(t, h, "CASHIER")
	require.Eventually(t, func() bool { return h.Clients("") == 1 }, time.Second, 10*time.Millisecond)

	h.Close()
	assert.Equal(t, 0, h.Clients(""))

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := c.ReadMessage()
	assert.Error(t, err)
}
