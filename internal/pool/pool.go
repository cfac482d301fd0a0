// internal/pool/pool.go
package pool

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// Request bodies and gzip writers are allocated on every request of the
// two hot paths; both are recycled here to keep GC pressure flat under
// sustained ingest traffic.

var (
	// BodyPool buffers POST bodies. 4KB initial capacity covers typical
	// log payloads.
	BodyPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 4*1024))
		},
	}

	// GzipPool recycles gzip.Writers for compressed retrieval responses.
	// BestSpeed: response latency matters more than the last few percent
	// of ratio.
	GzipPool = sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
			return w
		},
	}
)

// PutBody returns buf to the pool unless it grew past maxCap; oversized
// buffers are left to the GC so one huge payload does not pin memory
// forever.
func PutBody(buf *bytes.Buffer, maxCap int64) {
	if int64(buf.Cap()) <= maxCap {
		buf.Reset()
		BodyPool.Put(buf)
	}
}
