package handlers

import (
	"focusflow/internal/config"
	"focusflow/internal/middleware"
	"focusflow/internal/models"
	myws "focusflow/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// TaskFeed upgrades to a websocket that receives a tasks.changed event
// whenever the caller's list changes. Incoming frames are read and dropped.
func TaskFeed(d *config.Dependencies) fiber.Handler {
	feed := websocket.New(func(conn *websocket.Conn) {
		id, ok := conn.Locals(middleware.IdentityKey).(models.Identity)
		if !ok {
			return
		}

		client := &myws.Client{UserID: id.ID, Conn: conn}
		if !d.Hub.Join(client) {
			return
		}
		defer d.Hub.Leave(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return feed(c)
	}
}
