package handler

import (
	"net/http"
	"strings"

	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TokenValidator resolves an access token to the caller's workspace
type TokenValidator interface {
	ValidateToken(token string) (workspaceID int32, err error)
}

// WebSocketHandler upgrades authenticated clients to the live event stream
type WebSocketHandler struct {
	hub      *websocket.Hub
	tokens   TokenValidator
	origins  map[string]struct{}
	upgrader ws.Upgrader
}

// NewWebSocketHandler accepts upgrades from the CORS origins and from
// clients that send no Origin header at all
func NewWebSocketHandler(hub *websocket.Hub, tokens TokenValidator, allowedOrigins []string) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:     hub,
		tokens:  tokens,
		origins: make(map[string]struct{}, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		h.origins[strings.TrimRight(strings.TrimSpace(o), "/")] = struct{}{}
	}
	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := h.origins[origin]; ok {
		return true
	}
	log.Warn().Str("origin", origin).Msg("WebSocket origin rejected")
	return false
}

// HandleWS handles GET /ws?token=<access token>. Browsers cannot set headers
// on the upgrade request, so the token travels in the query string.
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return NewUnauthorizedError(c, "Missing token")
	}
	workspaceID, err := h.tokens.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket token rejected")
		return NewUnauthorizedError(c, "Invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already answered with an HTTP error
		log.Debug().Err(err).Int32("workspace_id", workspaceID).Msg("WebSocket upgrade failed")
		return nil
	}

	session := websocket.NewSession(conn, workspaceID, h.hub)
	log.Info().
		Int32("workspace_id", workspaceID).
		Str("session_id", session.ID()).
		Msg("WebSocket session opened")

	go session.Run()
	return nil
}
