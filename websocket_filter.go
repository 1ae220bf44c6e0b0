package main

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// ClientSubscription defines which log entries a streaming client receives
type ClientSubscription struct {
	// File name filtering, matched against the base file name
	FilePatterns []string `json:"file_patterns"` // e.g. ["app-*.log", "nginx.log"]

	// Level filtering
	Levels []string `json:"levels"` // e.g. ["ERROR", "WARNING"]

	// Message content filtering
	MessageContains []string `json:"message_contains"`
	MessageExcludes []string `json:"message_excludes"`
	MessageRegex    string   `json:"message_regex"`

	// Rate limiting, 0 = unlimited
	MaxMessagesPerSecond int `json:"max_rate"`

	// Batching: deliver accumulated entries after this timeout
	BatchTimeoutMs int `json:"batch_timeout_ms"`
}

// MessageFilter performs entry filtering with precompiled patterns
type MessageFilter struct {
	subscription *ClientSubscription

	fileGlobs    []glob.Glob
	messageRegex *regexp.Regexp
}

// NewMessageFilter compiles the subscription's patterns. Invalid glob or
// regex syntax is reported to the client instead of being ignored.
func NewMessageFilter(sub *ClientSubscription) (*MessageFilter, error) {
	filter := &MessageFilter{subscription: sub}

	for _, pattern := range sub.FilePatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		filter.fileGlobs = append(filter.fileGlobs, g)
	}

	if sub.MessageRegex != "" {
		re, err := regexp.Compile(sub.MessageRegex)
		if err != nil {
			return nil, err
		}
		filter.messageRegex = re
	}

	return filter, nil
}

// Matches checks whether a log entry passes all subscription filters
func (f *MessageFilter) Matches(entry LogEntry) bool {
	if len(f.fileGlobs) > 0 {
		matched := false
		for _, g := range f.fileGlobs {
			if g.Match(entry.File) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.subscription.Levels) > 0 {
		matched := false
		for _, level := range f.subscription.Levels {
			if strings.EqualFold(level, entry.Level) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.subscription.MessageContains) > 0 {
		matched := false
		lowerMsg := strings.ToLower(entry.Message)
		for _, substr := range f.subscription.MessageContains {
			if strings.Contains(lowerMsg, strings.ToLower(substr)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(f.subscription.MessageExcludes) > 0 {
		lowerMsg := strings.ToLower(entry.Message)
		for _, substr := range f.subscription.MessageExcludes {
			if strings.Contains(lowerMsg, strings.ToLower(substr)) {
				return false
			}
		}
	}

	if f.messageRegex != nil && !f.messageRegex.MatchString(entry.Message) {
		return false
	}

	return true
}

// GetDefaultSubscription returns the subscription new clients start with:
// everything except DEBUG chatter, unlimited rate, no batching.
func GetDefaultSubscription() *ClientSubscription {
	return &ClientSubscription{
		Levels: []string{LevelError, LevelWarning, LevelInfo, LevelUnknown},
	}
}
