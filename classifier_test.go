package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"bracketed info", "2025-08-11 15:30:00 [INFO] User authentication successful", LevelInfo},
		{"fatal maps to error", "connection refused: fatal error", LevelError},
		{"plain error", "ERROR: database connection timeout", LevelError},
		{"critical maps to error", "CRITICAL failure in disk subsystem", LevelError},
		{"lowercase warn", "warn: disk space running low", LevelWarning},
		{"warning word", "[WARNING] High memory usage detected", LevelWarning},
		{"debug", "[DEBUG] cache lookup took 2ms", LevelDebug},
		{"trace maps to debug", "TRACE entering handler", LevelDebug},
		{"mixed case", "Info: backup process started", LevelInfo},
		{"no match", "user logged out", LevelUnknown},
		{"empty line", "", LevelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyLevel(tt.line))
		})
	}
}

func TestClassifyLevelPriority(t *testing.T) {
	// A line matching several levels classifies as the highest-priority one.
	assert.Equal(t, LevelError, classifyLevel("error while emitting warning info debug"))
	assert.Equal(t, LevelWarning, classifyLevel("warning: info and debug output suppressed"))
	assert.Equal(t, LevelInfo, classifyLevel("info: debug output suppressed"))
}

func TestClassifyLevelIsPure(t *testing.T) {
	line := "FATAL: unrecoverable warning about info"
	first := classifyLevel(line)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, classifyLevel(line))
	}
}
