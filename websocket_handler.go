package main

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// SetupWebSocketRoutes adds the /ws live log stream to the Fiber app
func SetupWebSocketRoutes(app *fiber.App, hub *Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		handleWebSocketConnection(c, hub)
	}))
}

// handleWebSocketConnection wires a new connection into the hub
func handleWebSocketConnection(conn *websocket.Conn, hub *Hub) {
	client := NewClient(hub, conn)

	hub.register <- client

	go client.writePump()
	client.readPump() // blocks until the connection closes
}
