// internal/metrics/metrics.go
package metrics

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// Metric names published to CloudWatch. Values are shared with the
// dashboards and alarms of the original deployment, do not rename.
const (
	LogsIngested       = "LogsIngested"
	LogIngestionErrors = "LogIngestionErrors"
	LogsRetrieved      = "LogsRetrieved"
	LogRetrievalErrors = "LogRetrievalErrors"
)

// Sink publishes fire-and-forget counters. Implementations must never let
// a publish failure reach the caller: a metric is worth a warn line, not a
// failed request.
type Sink interface {
	Increment(ctx context.Context, name string, value float64, serviceName string)
}

// Noop is the Sink used when metrics are disabled and in tests.
type Noop struct{}

func (Noop) Increment(context.Context, string, float64, string) {}

// Counters are the in-process operational counters served at /metrics.
// They complement the CloudWatch metrics: no network, no cost, and still
// there when the sink is disabled.
type Counters struct {
	// IngestRequestsTotal counts every POST /logs that reached the
	// handler, whatever the outcome.
	IngestRequestsTotal int64

	// IngestAcceptedTotal counts entries written to the store (201s).
	IngestAcceptedTotal int64

	// IngestRejectedInvalidTotal counts 400s: malformed JSON, missing
	// fields, level outside the vocabulary.
	IngestRejectedInvalidTotal int64

	// IngestRejectedBodyTooLargeTotal counts requests dropped by the body
	// size cap before decoding.
	IngestRejectedBodyTooLargeTotal int64

	// StorePutErrorsTotal counts failed store writes (surfaced as 500s).
	StorePutErrorsTotal int64

	// QueryRequestsTotal counts every GET /logs that reached the handler.
	QueryRequestsTotal int64

	// QueryRejectedInvalidTotal counts 400s: unknown level values and
	// non-numeric limit or lookback_hours parameters.
	QueryRejectedInvalidTotal int64

	// QueryFallbackTotal counts retrievals an indexed path could not serve
	// and a scan did. A steady climb means an index is missing or broken.
	QueryFallbackTotal int64

	// QueryErrorsTotal counts retrievals that failed on every path (500s).
	QueryErrorsTotal int64

	// EntriesReturnedTotal sums the entries handed back across all
	// successful retrievals.
	EntriesReturnedTotal int64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) String() string {
	var sb strings.Builder
	sb.Grow(256)

	fmt.Fprintf(&sb, "ingest_requests_total=%d\n", atomic.LoadInt64(&c.IngestRequestsTotal))
	fmt.Fprintf(&sb, "ingest_accepted_total=%d\n", atomic.LoadInt64(&c.IngestAcceptedTotal))
	fmt.Fprintf(&sb, "ingest_rejected_invalid_total=%d\n", atomic.LoadInt64(&c.IngestRejectedInvalidTotal))
	fmt.Fprintf(&sb, "ingest_rejected_body_too_large_total=%d\n", atomic.LoadInt64(&c.IngestRejectedBodyTooLargeTotal))
	fmt.Fprintf(&sb, "store_put_errors_total=%d\n", atomic.LoadInt64(&c.StorePutErrorsTotal))
	fmt.Fprintf(&sb, "query_requests_total=%d\n", atomic.LoadInt64(&c.QueryRequestsTotal))
	fmt.Fprintf(&sb, "query_rejected_invalid_total=%d\n", atomic.LoadInt64(&c.QueryRejectedInvalidTotal))
	fmt.Fprintf(&sb, "query_fallback_total=%d\n", atomic.LoadInt64(&c.QueryFallbackTotal))
	fmt.Fprintf(&sb, "query_errors_total=%d\n", atomic.LoadInt64(&c.QueryErrorsTotal))
	fmt.Fprintf(&sb, "entries_returned_total=%d\n", atomic.LoadInt64(&c.EntriesReturnedTotal))

	return sb.String()
}
