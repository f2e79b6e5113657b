package handler

import (
	"go-retail-pos/internal/middleware"
	"go-retail-pos/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const localWSTenant = "ws_tenant"

// WSHandler attaches authenticated sockets to the hub.
type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade rejects plain HTTP requests and picks the tenant the socket
// listens to. A super admin without a tenant hears every tenant.
// GET /ws?token=
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	tenantID := uuid.Nil
	user := middleware.CurrentUser(c)
	claims := middleware.CurrentClaims(c)
	switch {
	case user != nil && user.TenantID != nil:
		tenantID = *user.TenantID
	case claims != nil && claims.SuperAdmin && c.Query("tenantId") != "":
		id, err := uuid.Parse(c.Query("tenantId"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid tenantId")
		}
		tenantID = id
	}
	c.Locals(localWSTenant, tenantID)
	return c.Next()
}

// Serve keeps the socket registered until the client goes away.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		tenantID, _ := conn.Locals(localWSTenant).(uuid.UUID)
		client := ws.NewClient(conn, tenantID)
		h.hub.Register(client)
		defer h.hub.Unregister(client)

		for {
			// Keep alive loop
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
