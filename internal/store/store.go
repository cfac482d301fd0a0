// internal/store/store.go
package store

import (
	"context"
	"fmt"

	"simplelog/internal/model"
)

// LogStore is the persistence boundary for log entries. Implementations:
// DynamoDB for deployments, memstore for tests and local runs.
type LogStore interface {
	// Put writes one immutable entry. Never retried by callers.
	Put(ctx context.Context, entry model.LogEntry) error

	// QueryByService reads entries for one service through the table key,
	// newest first, bounded by q.
	QueryByService(ctx context.Context, serviceName string, q Query) ([]model.LogEntry, error)

	// QueryByLogType reads entries for one log type through the secondary
	// index, newest first, bounded by q. Returns *CapabilityError when the
	// index cannot serve the query.
	QueryByLogType(ctx context.Context, logType string, q Query) ([]model.LogEntry, error)

	// Scan reads every entry newer than timeFloor matching f. No limit is
	// applied here: callers sort before truncating, a pre-truncated scan
	// would hand back the oldest matches instead of the newest.
	Scan(ctx context.Context, timeFloor int64, f ScanFilter) ([]model.LogEntry, error)
}

// Query bounds an indexed read.
type Query struct {
	TimeFloor int64  // exclude entries older than this epoch second
	Level     string // optional level filter, already uppercased
	Limit     int    // max rows to collect
}

// ScanFilter narrows a full scan. Zero values mean "no filter".
type ScanFilter struct {
	ServiceName string
	LogType     string
	Level       string
}

// Match reports whether the entry passes the filter.
func (f ScanFilter) Match(e model.LogEntry) bool {
	if f.ServiceName != "" && e.ServiceName != f.ServiceName {
		return false
	}
	if f.LogType != "" && e.LogType != f.LogType {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	return true
}

// CapabilityError marks an access path the store cannot serve (typically a
// missing or misconfigured index). It triggers the scan fallback and is
// never surfaced to a client.
type CapabilityError struct {
	Path string // which access path failed, e.g. "log_type_index"
	Err  error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("access path %s unavailable: %v", e.Path, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }
