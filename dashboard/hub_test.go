package dashboard

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platefront/ordering-app/models"
)

func dialDashboardClient(t *testing.T, serverURL string, storeID uint) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?store="+strconv.Itoa(int(storeID)), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastScopedPerStore(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storeID, err := strconv.Atoi(r.URL.Query().Get("store"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		RegisterClient(conn, uint(storeID), "staff")
	}))
	defer srv.Close()

	connA := dialDashboardClient(t, srv.URL, 1)
	connB := dialDashboardClient(t, srv.URL, 2)

	// Registrasi berjalan di goroutine handler; tunggu dua-duanya terdaftar
	require.Eventually(t, func() bool {
		hub.mutex.Lock()
		defer hub.mutex.Unlock()
		return len(hub.clients) == 2
	}, time.Second, 10*time.Millisecond)

	BroadcastOrderUpdate(models.Order{StoreID: 1, OrderNumber: "ORD-1", Status: models.OrderStatusNew})

	require.NoError(t, connA.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := connA.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), EventOrderUpdate)
	assert.Contains(t, string(data), "ORD-1")

	// Staff store lain tidak menerima apa pun
	require.NoError(t, connB.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = connB.ReadMessage()
	require.Error(t, err)
	netErr, ok := err.(net.Error)
	require.True(t, ok)
	assert.True(t, netErr.Timeout())
}
