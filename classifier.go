package main

import "strings"

// levelPatterns maps each severity to the substrings that trigger it.
// Order matters: the first level whose patterns match wins, so a line
// like "fatal error while warning user" classifies as ERROR.
var levelPatterns = []struct {
	level    string
	patterns []string
}{
	{LevelError, []string{"error", "critical", "fatal"}},
	{LevelWarning, []string{"warn"}},
	{LevelInfo, []string{"info"}},
	{LevelDebug, []string{"debug", "trace"}},
}

// classifyLevel maps a raw log line to a severity label. Matching is
// case-insensitive substring search in priority order; lines matching
// no pattern are UNKNOWN. The function is pure: no state, no side effects.
func classifyLevel(line string) string {
	lower := strings.ToLower(line)

	for _, rule := range levelPatterns {
		for _, pattern := range rule.patterns {
			if strings.Contains(lower, pattern) {
				return rule.level
			}
		}
	}

	return LevelUnknown
}
