package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokenValidator struct {
	workspaceID int32
	err         error
}

func (s *stubTokenValidator) ValidateToken(token string) (int32, error) {
	return s.workspaceID, s.err
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://spendwise.app"}

func TestWebSocketHandler_HandleWS_MissingToken(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &stubTokenValidator{workspaceID: 1}, testAllowedOrigins)
	c, rec := newRequest(echo.New(), http.MethodGet, "/ws", "")

	require.NoError(t, h.HandleWS(c))
	expectProblem(t, rec, http.StatusUnauthorized, ErrorTypeUnauthorized)
}

func TestWebSocketHandler_HandleWS_InvalidToken(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &stubTokenValidator{err: errors.New("token expired")}, testAllowedOrigins)
	c, rec := newRequest(echo.New(), http.MethodGet, "/ws?token=invalid-jwt", "")

	require.NoError(t, h.HandleWS(c))
	expectProblem(t, rec, http.StatusUnauthorized, ErrorTypeUnauthorized)
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, &stubTokenValidator{workspaceID: 42}, testAllowedOrigins)
	c, rec := newRequest(echo.New(), http.MethodGet, "/ws?token=valid-jwt", "")

	// auth passes; the plain GET then fails the upgrade handshake
	require.NoError(t, h.HandleWS(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, hub.ClientCount(42))
}

func TestWebSocketHandler_UpgradeStreamsWorkspaceEvents(t *testing.T) {
	hub := websocket.NewHub()
	h := NewWebSocketHandler(hub, &stubTokenValidator{workspaceID: 42}, testAllowedOrigins)
	e := echo.New()
	e.GET("/ws", h.HandleWS)
	srv := httptest.NewServer(e)
	defer srv.Close()
	defer hub.Shutdown()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=valid-jwt"
	conn, resp, err := ws.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://spendwise.app"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.ClientCount(42) == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(42, websocket.ExpenseDeleted(map[string]int32{"id": 5}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var event websocket.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "expense.deleted", event.Type)
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	h := NewWebSocketHandler(websocket.NewHub(), &stubTokenValidator{workspaceID: 1}, append(testAllowedOrigins, "https://app.spendwise.io/"))

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://spendwise.app", true},
		{"configured with trailing slash", "https://app.spendwise.io", true},
		{"disallowed origin", "https://evil.com", false},
		{"no origin", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.expected, h.checkOrigin(req))
		})
	}
}
