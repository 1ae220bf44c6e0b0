package main

import (
	"log"
	"sync"
)

// Hub maintains the set of active streaming clients and fans new log
// entries out to them. The tailer never blocks on slow clients: the
// broadcast channel is buffered and overflow is dropped.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan LogEntry
	register   chan *Client
	unregister chan *Client
	maxClients int
	mutex      sync.RWMutex
}

// NewHub creates a hub accepting at most maxClients connections
func NewHub(maxClients int) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan LogEntry, 1000),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		maxClients: maxClients,
	}
}

// Run starts the hub's main event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case entry := <-h.broadcast:
			h.broadcastEntry(entry)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.clients) >= h.maxClients {
		log.Printf("Maximum client limit reached (%d), rejecting new client", h.maxClients)
		close(client.send)
		client.conn.Close()
		return
	}

	h.clients[client] = true
	log.Printf("Stream client registered, total clients: %d/%d", len(h.clients), h.maxClients)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		log.Printf("Stream client unregistered, remaining clients: %d/%d", len(h.clients), h.maxClients)
	}
}

func (h *Hub) broadcastEntry(entry LogEntry) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	// Each client filters against its own subscription; process per client
	// so one slow filter does not hold up the rest.
	for client := range h.clients {
		go client.ProcessEntry(entry)
	}
}

// BroadcastLog queues a log entry for delivery to all connected clients.
// Called from the tailer; drops the entry when the hub cannot keep up.
func (h *Hub) BroadcastLog(entry LogEntry) {
	select {
	case h.broadcast <- entry:
	default:
		log.Printf("Hub broadcast channel full, dropping entry")
	}
}

func (h *Hub) clientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// GetStats returns hub statistics for the /status payload
func (h *Hub) GetStats() map[string]interface{} {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return map[string]interface{}{
		"connected_clients": len(h.clients),
		"max_clients":       h.maxClients,
		"broadcast_buffer":  len(h.broadcast),
	}
}
