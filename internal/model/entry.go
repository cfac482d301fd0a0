// internal/model/entry.go
package model

import "strings"

// LogEntry is the single record unit of the service.
// Created once at ingest time, stored as-is, never mutated afterwards.
// Field names match the DynamoDB attribute names and the wire format.
type LogEntry struct {
	LogID       string         `json:"log_id" dynamodbav:"log_id"`
	ServiceName string         `json:"service_name" dynamodbav:"service_name"`
	Timestamp   int64          `json:"timestamp" dynamodbav:"timestamp"` // UTC epoch seconds
	LogType     string         `json:"log_type" dynamodbav:"log_type"`
	Level       string         `json:"level" dynamodbav:"level"`
	Message     string         `json:"message" dynamodbav:"message"`
	// Pointer, not a plain map: omitempty on a map would also drop an
	// explicitly supplied empty object. Absent stays absent (nil pointer),
	// a supplied {} survives both codecs (non-nil pointer, empty map).
	Metadata *map[string]any `json:"metadata,omitempty" dynamodbav:"metadata,omitempty"`
}

// Levels is the closed severity vocabulary, in canonical (uppercase) form.
// WARN and WARNING are both accepted and stored as supplied; neither is
// rewritten into the other.
var Levels = []string{"DEBUG", "INFO", "WARN", "WARNING", "ERROR"}

// NormalizeLevel uppercases the supplied level and reports whether it is a
// member of the vocabulary. Matching is case-insensitive, surrounding
// whitespace is not stripped.
func NormalizeLevel(level string) (string, bool) {
	up := strings.ToUpper(level)
	for _, l := range Levels {
		if up == l {
			return up, true
		}
	}
	return up, false
}
