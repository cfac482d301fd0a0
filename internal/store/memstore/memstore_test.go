package memstore

import (
	"context"
	"errors"
	"testing"

	"simplelog/internal/model"
	"simplelog/internal/store"
)

func seed(t *testing.T, s *Store, entries ...model.LogEntry) {
	t.Helper()
	for _, e := range entries {
		if err := s.Put(context.Background(), e); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
}

func entry(id, service, logType, level string, ts int64) model.LogEntry {
	return model.LogEntry{
		LogID:       id,
		ServiceName: service,
		LogType:     logType,
		Level:       level,
		Message:     "m",
		Timestamp:   ts,
	}
}

func TestQueryByServiceNewestFirst(t *testing.T) {
	s := New()
	seed(t, s,
		entry("a", "api", "app", "INFO", 100),
		entry("b", "api", "app", "INFO", 300),
		entry("c", "api", "app", "INFO", 200),
		entry("d", "worker", "app", "INFO", 400),
	)

	got, err := s.QueryByService(context.Background(), "api", store.Query{TimeFloor: 0, Limit: 10})
	if err != nil {
		t.Fatalf("QueryByService failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	want := []string{"b", "c", "a"}
	for i := range want {
		if got[i].LogID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i].LogID, want[i])
		}
	}
}

func TestQueryRespectsTimeFloorAndLimit(t *testing.T) {
	s := New()
	seed(t, s,
		entry("old", "api", "app", "INFO", 50),
		entry("a", "api", "app", "INFO", 100),
		entry("b", "api", "app", "INFO", 200),
		entry("c", "api", "app", "INFO", 300),
	)

	got, err := s.QueryByService(context.Background(), "api", store.Query{TimeFloor: 100, Limit: 2})
	if err != nil {
		t.Fatalf("QueryByService failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].LogID != "c" || got[1].LogID != "b" {
		t.Errorf("got [%s %s], want the two most recent [c b]", got[0].LogID, got[1].LogID)
	}
}

func TestQueryByLogTypeLevelFilter(t *testing.T) {
	s := New()
	seed(t, s,
		entry("a", "api", "system", "ERROR", 100),
		entry("b", "api", "system", "INFO", 200),
		entry("c", "api", "application", "ERROR", 300),
	)

	got, err := s.QueryByLogType(context.Background(), "system", store.Query{Level: "ERROR", Limit: 10})
	if err != nil {
		t.Fatalf("QueryByLogType failed: %v", err)
	}
	if len(got) != 1 || got[0].LogID != "a" {
		t.Fatalf("got %v, want only entry a", got)
	}
}

func TestQueryByLogTypeIndexDisabled(t *testing.T) {
	s := New()
	s.IndexDisabled = true

	_, err := s.QueryByLogType(context.Background(), "system", store.Query{Limit: 10})
	var capErr *store.CapabilityError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapabilityError, got %v", err)
	}
}

func TestScanReturnsUnlimited(t *testing.T) {
	s := New()
	seed(t, s,
		entry("a", "api", "app", "INFO", 100),
		entry("b", "worker", "system", "ERROR", 200),
		entry("old", "api", "app", "INFO", 10),
	)

	got, err := s.Scan(context.Background(), 50, store.ScanFilter{})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2 (floor excludes the old one)", len(got))
	}
}

func TestScanFilters(t *testing.T) {
	s := New()
	seed(t, s,
		entry("a", "api", "app", "INFO", 100),
		entry("b", "api", "system", "ERROR", 200),
		entry("c", "worker", "app", "INFO", 300),
	)

	got, err := s.Scan(context.Background(), 0, store.ScanFilter{ServiceName: "api", LogType: "system"})
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(got) != 1 || got[0].LogID != "b" {
		t.Fatalf("got %v, want only entry b", got)
	}
}
