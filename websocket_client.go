package main

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"golang.org/x/time/rate"
)

// Client represents one WebSocket streaming connection
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	subscription *ClientSubscription
	filter       *MessageFilter

	rateLimiter *rate.Limiter

	batchBuffer []*StreamEntry
	batchTimer  *time.Timer
	batchMutex  sync.Mutex

	messagesQueued  int
	messagesDropped int
	statsMutex      sync.RWMutex
}

// NewClient creates a client starting with the default subscription
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	defaultSub := GetDefaultSubscription()
	filter, err := NewMessageFilter(defaultSub)
	if err != nil {
		log.Printf("Error creating default filter: %v", err)
		filter = nil
	}

	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 500),
		subscription: defaultSub,
		filter:       filter,
	}
}

// UpdateSubscription replaces the client's subscription and recompiles filters
func (c *Client) UpdateSubscription(sub *ClientSubscription) error {
	filter, err := NewMessageFilter(sub)
	if err != nil {
		return err
	}

	c.subscription = sub
	c.filter = filter

	if sub.MaxMessagesPerSecond > 0 {
		c.rateLimiter = rate.NewLimiter(rate.Limit(sub.MaxMessagesPerSecond), sub.MaxMessagesPerSecond)
	} else {
		c.rateLimiter = nil
	}

	if sub.BatchTimeoutMs > 0 {
		if c.batchTimer == nil {
			c.batchTimer = time.NewTimer(time.Duration(sub.BatchTimeoutMs) * time.Millisecond)
			go c.handleBatchTimeout()
		}
	} else if c.batchTimer != nil {
		c.batchTimer.Stop()
		c.batchTimer = nil
	}

	return nil
}

// ProcessEntry filters, rate-limits and queues one log entry for this client
func (c *Client) ProcessEntry(entry LogEntry) {
	if c.filter != nil && !c.filter.Matches(entry) {
		return
	}

	if c.rateLimiter != nil && !c.rateLimiter.Allow() {
		c.statsMutex.Lock()
		c.messagesDropped++
		c.statsMutex.Unlock()
		return
	}

	msg := toStreamEntry(entry)

	if c.subscription.BatchTimeoutMs > 0 {
		c.batchMutex.Lock()
		c.batchBuffer = append(c.batchBuffer, msg)
		c.batchMutex.Unlock()
		return
	}

	data, err := json.Marshal(ServerMessage{Type: "log", Data: msg})
	if err != nil {
		log.Printf("Error marshaling stream entry: %v", err)
		return
	}
	c.sendMessage(data)
}

// sendMessage queues data for the write pump, dropping on overflow
func (c *Client) sendMessage(data []byte) {
	select {
	case c.send <- data:
		c.statsMutex.Lock()
		c.messagesQueued++
		c.statsMutex.Unlock()
	default:
		c.statsMutex.Lock()
		c.messagesDropped++
		c.statsMutex.Unlock()
		log.Printf("Client send buffer full, dropping message")
	}
}

// flushBatch delivers the accumulated entries as one batch message
func (c *Client) flushBatch() {
	c.batchMutex.Lock()
	entries := c.batchBuffer
	c.batchBuffer = nil
	c.batchMutex.Unlock()

	if len(entries) == 0 {
		return
	}

	data, err := json.Marshal(ServerMessage{
		Type: "batch",
		Data: BatchMessage{Entries: entries, Count: len(entries)},
	})
	if err != nil {
		log.Printf("Error marshaling batch: %v", err)
		return
	}
	c.sendMessage(data)
}

// handleBatchTimeout flushes the batch buffer on a fixed cadence
func (c *Client) handleBatchTimeout() {
	for {
		timer := c.batchTimer
		if timer == nil {
			return
		}

		<-timer.C
		c.flushBatch()

		if c.subscription.BatchTimeoutMs > 0 {
			timer.Reset(time.Duration(c.subscription.BatchTimeoutMs) * time.Millisecond)
		} else {
			return
		}
	}
}

// readPump reads messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		var clientMsg ClientMessage
		err := c.conn.ReadJSON(&clientMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleClientMessage(&clientMsg)
	}
}

// writePump writes messages from the send channel to the connection
func (c *Client) writePump() {
	defer c.conn.Close()

	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}

		c.statsMutex.Lock()
		c.messagesQueued--
		c.statsMutex.Unlock()
	}
}

// handleClientMessage processes one request from the client
func (c *Client) handleClientMessage(msg *ClientMessage) {
	switch msg.Action {
	case "subscribe", "update":
		var sub ClientSubscription
		if err := json.Unmarshal(msg.Data, &sub); err != nil {
			c.sendError("invalid_subscription", "Invalid subscription format")
			return
		}

		if err := c.UpdateSubscription(&sub); err != nil {
			c.sendError("filter_error", err.Error())
			return
		}

		if msg.Action == "subscribe" {
			c.sendAck("subscribed")
		} else {
			c.sendAck("updated")
		}

	case "ping":
		c.sendPong()

	case "stats":
		c.sendStats()

	default:
		c.sendError("unknown_action", "Unknown action: "+msg.Action)
	}
}

func (c *Client) sendError(code, message string) {
	data, err := json.Marshal(ServerMessage{
		Type: "error",
		Data: ErrorMessage{Code: code, Message: message},
	})
	if err != nil {
		return
	}
	c.sendMessage(data)
}

func (c *Client) sendAck(message string) {
	data, err := json.Marshal(ServerMessage{
		Type: "ack",
		Data: map[string]string{"message": message},
	})
	if err != nil {
		return
	}
	c.sendMessage(data)
}

func (c *Client) sendPong() {
	data, err := json.Marshal(ServerMessage{
		Type: "pong",
		Data: map[string]int64{"timestamp": time.Now().Unix()},
	})
	if err != nil {
		return
	}
	c.sendMessage(data)
}

func (c *Client) sendStats() {
	c.statsMutex.RLock()
	stats := StatsMessage{
		Connected:      c.hub.clientCount(),
		TotalClients:   c.hub.maxClients,
		MessagesQueued: len(c.send),
		Dropped:        c.messagesDropped,
	}
	c.statsMutex.RUnlock()

	data, err := json.Marshal(ServerMessage{Type: "stats", Data: stats})
	if err != nil {
		return
	}
	c.sendMessage(data)
}
