package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSessionServer(t *testing.T, hub *Hub, workspaceID int32) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go NewSession(conn, workspaceID, hub).Run()
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitForSubscribers(t *testing.T, hub *Hub, workspaceID int32, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return hub.ClientCount(workspaceID) == want
	}, time.Second, 5*time.Millisecond)
}

func TestSession_ReceivesPublishedEvents(t *testing.T) {
	hub := NewHub()
	url := startSessionServer(t, hub, 3)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForSubscribers(t, hub, 3, 1)

	hub.Publish(3, ExpenseCreated(map[string]int32{"id": 11}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "expense.created", event.Type)
}

func TestSession_PeerCloseUnregisters(t *testing.T) {
	hub := NewHub()
	url := startSessionServer(t, hub, 5)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	waitForSubscribers(t, hub, 5, 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, hub, 5, 0)
}

func TestSession_HubShutdownClosesConnection(t *testing.T) {
	hub := NewHub()
	url := startSessionServer(t, hub, 8)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForSubscribers(t, hub, 8, 1)

	hub.Shutdown()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestSession_DeliverReportsSlowConsumer(t *testing.T) {
	s := NewSession(nil, 1, NewHub())
	for i := 0; i < outboundBuffer; i++ {
		require.NoError(t, s.Deliver([]byte("{}")))
	}
	assert.ErrorIs(t, s.Deliver([]byte("{}")), ErrSlowConsumer)
}
