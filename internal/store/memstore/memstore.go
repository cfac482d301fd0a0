// internal/store/memstore/memstore.go
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"simplelog/internal/model"
	"simplelog/internal/store"
)

// Store is an in-memory LogStore. It backs the STORE_DRIVER=memory profile
// for local runs and is the substitute store in tests. Semantics mirror the
// DynamoDB implementation: indexed reads come back newest first and
// respect Limit, Scan returns everything past the time floor unordered.
type Store struct {
	mu      sync.RWMutex
	entries []model.LogEntry

	// IndexDisabled simulates a missing secondary index: when set,
	// QueryByLogType answers with a CapabilityError like a table whose GSI
	// was never provisioned.
	IndexDisabled bool

	// FailAll makes every operation fail. Used to exercise store-error
	// handling end to end.
	FailAll bool
}

var errUnavailable = errors.New("memstore: unavailable")

func New() *Store {
	return &Store{}
}

func (s *Store) Put(_ context.Context, entry model.LogEntry) error {
	if s.FailAll {
		return errUnavailable
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *Store) QueryByService(_ context.Context, serviceName string, q store.Query) ([]model.LogEntry, error) {
	if s.FailAll {
		return nil, errUnavailable
	}
	return s.query(store.ScanFilter{ServiceName: serviceName, Level: q.Level}, q)
}

func (s *Store) QueryByLogType(_ context.Context, logType string, q store.Query) ([]model.LogEntry, error) {
	if s.FailAll {
		return nil, errUnavailable
	}
	if s.IndexDisabled {
		return nil, &store.CapabilityError{Path: "log_type_index", Err: errUnavailable}
	}
	return s.query(store.ScanFilter{LogType: logType, Level: q.Level}, q)
}

func (s *Store) Scan(_ context.Context, timeFloor int64, f store.ScanFilter) ([]model.LogEntry, error) {
	if s.FailAll {
		return nil, errUnavailable
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.LogEntry
	for _, e := range s.entries {
		if e.Timestamp >= timeFloor && f.Match(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) query(f store.ScanFilter, q store.Query) ([]model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.LogEntry
	for _, e := range s.entries {
		if e.Timestamp >= q.TimeFloor && f.Match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}
