// internal/server/handler.go
package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"simplelog/internal/config"
	"simplelog/internal/ingest"
	"simplelog/internal/metrics"
	"simplelog/internal/model"
	"simplelog/internal/pool"
	"simplelog/internal/query"
	"simplelog/internal/store"

	json "github.com/goccy/go-json"
	zlog "github.com/rs/zerolog/log"
)

type Handler struct {
	cfg       config.Config
	counters  *metrics.Counters
	sink      metrics.Sink
	validator *ingest.Validator
	planner   *query.Planner
	store     store.LogStore
}

func NewHandler(
	cfg config.Config,
	c *metrics.Counters,
	sink metrics.Sink,
	v *ingest.Validator,
	p *query.Planner,
	st store.LogStore,
) *Handler {
	return &Handler{
		cfg:       cfg,
		counters:  c,
		sink:      sink,
		validator: v,
		planner:   p,
		store:     st,
	}
}

// HandleLogs serves both operations of the log table:
//   - POST: validate and persist one entry
//   - GET:  return the most recent entries for the given filters
func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleIngest(w, r)
	case http.MethodGet:
		h.handleRetrieve(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type ingestResponse struct {
	Message   string `json:"message"`
	LogID     string `json:"log_id"`
	Timestamp int64  `json:"timestamp"`
}

func (h *Handler) handleIngest(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&h.counters.IngestRequestsTotal, 1)

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodySize)
	defer r.Body.Close()

	buf := pool.BodyPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer pool.PutBody(buf, h.cfg.MaxBodySize*2)

	if _, err := io.Copy(buf, r.Body); err != nil {
		atomic.AddInt64(&h.counters.IngestRejectedBodyTooLargeTotal, 1)
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	var req ingest.Request
	if err := json.Unmarshal(buf.Bytes(), &req); err != nil {
		atomic.AddInt64(&h.counters.IngestRejectedInvalidTotal, 1)
		h.sink.Increment(r.Context(), metrics.LogIngestionErrors, 1, "unknown")
		writeError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	entry, err := h.validator.ValidateAndBuild(req)
	if err != nil {
		atomic.AddInt64(&h.counters.IngestRejectedInvalidTotal, 1)
		h.sink.Increment(r.Context(), metrics.LogIngestionErrors, 1, serviceOf(req))
		zlog.Debug().
			Err(err).
			Str("client_ip", clientIP(r)).
			Msg("ingest rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Put(r.Context(), entry); err != nil {
		atomic.AddInt64(&h.counters.StorePutErrorsTotal, 1)
		h.sink.Increment(r.Context(), metrics.LogIngestionErrors, 1, entry.ServiceName)
		zlog.Error().
			Err(err).
			Str("service_name", entry.ServiceName).
			Msg("store put failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	atomic.AddInt64(&h.counters.IngestAcceptedTotal, 1)
	h.sink.Increment(r.Context(), metrics.LogsIngested, 1, entry.ServiceName)

	writeJSON(w, http.StatusCreated, ingestResponse{
		Message:   "Log entry created successfully",
		LogID:     entry.LogID,
		Timestamp: entry.Timestamp,
	})
}

type retrieveResponse struct {
	Count    int              `json:"count"`
	Logs     []model.LogEntry `json:"logs"`
	Degraded bool             `json:"degraded,omitempty"`
}

func (h *Handler) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&h.counters.QueryRequestsTotal, 1)

	params, perr := h.parseRetrieveParams(r)
	if perr != "" {
		atomic.AddInt64(&h.counters.QueryRejectedInvalidTotal, 1)
		writeError(w, http.StatusBadRequest, "Invalid parameter: "+perr)
		return
	}

	res, err := h.planner.Execute(r.Context(), params)
	if err != nil {
		atomic.AddInt64(&h.counters.QueryErrorsTotal, 1)
		h.sink.Increment(r.Context(), metrics.LogRetrievalErrors, 1, "unknown")
		var rerr *query.RetrievalError
		if errors.As(err, &rerr) {
			zlog.Error().Err(rerr.Err).Msg("retrieval failed on every path")
		} else {
			zlog.Error().Err(err).Msg("retrieval failed")
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if res.Degraded {
		atomic.AddInt64(&h.counters.QueryFallbackTotal, 1)
	}
	atomic.AddInt64(&h.counters.EntriesReturnedTotal, int64(len(res.Entries)))

	dim := params.ServiceName
	if dim == "" {
		dim = "all"
	}
	h.sink.Increment(r.Context(), metrics.LogsRetrieved, float64(len(res.Entries)), dim)

	logs := res.Entries
	if logs == nil {
		logs = []model.LogEntry{} // empty result is "[]", never null
	}
	writeJSON(w, http.StatusOK, retrieveResponse{
		Count:    len(logs),
		Logs:     logs,
		Degraded: res.Degraded,
	})
}

// parseRetrieveParams reads the query string. Non-numeric numerics name
// the offending parameter; range problems are clamped later by the
// planner, not rejected here.
func (h *Handler) parseRetrieveParams(r *http.Request) (query.Params, string) {
	q := r.URL.Query()

	params := query.Params{
		ServiceName: q.Get("service_name"),
		LogType:     q.Get("log_type"),
	}

	if raw := q.Get("level"); raw != "" {
		level, ok := model.NormalizeLevel(raw)
		if !ok {
			return params, "level"
		}
		params.Level = level
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, "limit"
		}
		params.Limit = n
	}

	if raw := q.Get("lookback_hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return params, "lookback_hours"
		}
		params.Lookback = time.Duration(n) * time.Hour
	}

	return params, ""
}

// HandleMetrics dumps the in-process counters as plain text.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.counters.String())
}

func serviceOf(req ingest.Request) string {
	if req.ServiceName != nil && *req.ServiceName != "" {
		return *req.ServiceName
	}
	return "unknown"
}
