package main

import (
	"encoding/json"
	"time"
)

// StreamEntry is a log entry as delivered to WebSocket clients
type StreamEntry struct {
	Timestamp string `json:"timestamp"`
	File      string `json:"file"`
	FullPath  string `json:"full_path"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Action string          `json:"action"` // "subscribe", "update", "ping", "stats"
	Data   json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string      `json:"type"` // "log", "batch", "stats", "error", "ack", "pong"
	Data interface{} `json:"data"`
}

// BatchMessage contains multiple stream entries delivered at once
type BatchMessage struct {
	Entries []*StreamEntry `json:"entries"`
	Count   int            `json:"count"`
}

// StatsMessage provides per-client delivery statistics
type StatsMessage struct {
	Connected      int `json:"connected"`
	TotalClients   int `json:"total_clients"`
	MessagesQueued int `json:"queued"`
	Dropped        int `json:"dropped"`
}

// ErrorMessage provides error information
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// toStreamEntry converts a stored log entry to its wire representation
func toStreamEntry(entry LogEntry) *StreamEntry {
	return &StreamEntry{
		Timestamp: entry.Timestamp.Format(time.RFC3339),
		File:      entry.File,
		FullPath:  entry.FullPath,
		Level:     entry.Level,
		Message:   entry.Message,
	}
}
