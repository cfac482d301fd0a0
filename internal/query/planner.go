// internal/query/planner.go
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"simplelog/internal/config"
	"simplelog/internal/model"
	"simplelog/internal/store"

	zlog "github.com/rs/zerolog/log"
)

// Params are the retrieval filters after parsing and clamping.
type Params struct {
	ServiceName string
	LogType     string
	Level       string // uppercased, or ""
	Limit       int
	Lookback    time.Duration
}

// Result is an ordered page of entries. Degraded marks a result served by
// the scan fallback instead of the intended indexed path.
type Result struct {
	Entries  []model.LogEntry
	Degraded bool
}

// RetrievalError wraps a retrieval where every access path failed,
// including the fallback. It is the only retrieval failure a client sees.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return fmt.Sprintf("retrieval failed: %v", e.Err) }
func (e *RetrievalError) Unwrap() error { return e.Err }

// Planner picks the cheapest access path that can answer a retrieval and
// degrades to a scan when that path is unavailable.
type Planner struct {
	cfg   config.Config
	store store.LogStore

	Now func() time.Time
}

func NewPlanner(cfg config.Config, st store.LogStore) *Planner {
	return &Planner{cfg: cfg, store: st, Now: time.Now}
}

// Execute runs one retrieval.
//
// Path selection, cheapest first:
//  1. service_name → table key query
//  2. log_type     → secondary index query
//  3. otherwise    → full scan
//
// A CapabilityError from an indexed path falls back to one scan carrying
// the same filters; any other error, or a failed fallback, surfaces as a
// RetrievalError. Results are always sorted newest first and truncated to
// the limit only after sorting.
func (p *Planner) Execute(ctx context.Context, params Params) (Result, error) {
	params = p.clamp(params)
	floor := p.Now().Add(-params.Lookback).Unix()

	q := store.Query{
		TimeFloor: floor,
		Level:     params.Level,
		Limit:     params.Limit,
	}

	var (
		entries []model.LogEntry
		err     error
		path    string
	)
	switch {
	case params.ServiceName != "":
		path = "service_key"
		entries, err = p.store.QueryByService(ctx, params.ServiceName, q)
	case params.LogType != "":
		path = "log_type_index"
		entries, err = p.store.QueryByLogType(ctx, params.LogType, q)
	default:
		path = "scan"
		entries, err = p.scan(ctx, floor, params)
	}

	degraded := false
	var capErr *store.CapabilityError
	if errors.As(err, &capErr) {
		zlog.Warn().
			Str("path", path).
			Err(capErr.Err).
			Msg("access path unavailable, falling back to scan")
		entries, err = p.scan(ctx, floor, params)
		degraded = true
	}
	if err != nil {
		return Result{}, &RetrievalError{Err: err}
	}

	// Indexed paths already come back newest first, scans come back in
	// storage order. Sorting unconditionally keeps the ordering invariant
	// independent of which path served the request.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	if len(entries) > params.Limit {
		entries = entries[:params.Limit]
	}

	return Result{Entries: entries, Degraded: degraded}, nil
}

func (p *Planner) scan(ctx context.Context, floor int64, params Params) ([]model.LogEntry, error) {
	return p.store.Scan(ctx, floor, store.ScanFilter{
		ServiceName: params.ServiceName,
		LogType:     params.LogType,
		Level:       params.Level,
	})
}

// clamp fills defaults and bounds the tunables. Out-of-range values are
// pulled into range, not rejected: a caller asking for too much gets the
// maximum, not an error.
func (p *Planner) clamp(params Params) Params {
	if params.Limit <= 0 {
		params.Limit = p.cfg.DefaultLimit
	}
	if params.Limit > p.cfg.MaxLimit {
		params.Limit = p.cfg.MaxLimit
	}
	if params.Lookback <= 0 {
		params.Lookback = p.cfg.DefaultLookback
	}
	if params.Lookback > p.cfg.MaxLookback {
		params.Lookback = p.cfg.MaxLookback
	}
	return params
}
