// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting of the service. All values are read
// once at process start by Load() and never change afterwards.
type Config struct {

	// ---------------------------
	// Store
	// ---------------------------

	StoreDriver  string        // "dynamodb" (default) or "memory" for local runs
	AWSRegion    string        // required when StoreDriver is "dynamodb"
	TableName    string        // DynamoDB table (hash: service_name, range: timestamp)
	LogTypeIndex string        // GSI keyed by log_type + timestamp
	StoreTimeout time.Duration // per store call timeout

	// ---------------------------
	// Metrics
	// ---------------------------

	MetricsEnabled   bool   // false disables the CloudWatch sink entirely
	MetricsNamespace string // CloudWatch namespace

	// ---------------------------
	// Identity / network
	// ---------------------------

	ServiceName string // logical service name, stamped on every log line
	InstanceID  string // hostname based, random hex fallback
	HTTPAddr    string // bind address, e.g. ":8080"

	// ---------------------------
	// Ingestion
	// ---------------------------

	MaxBodySize    int64    // max request body bytes
	RequiredFields []string // field names rejected when absent
	DefaultLevel   string   // applied when level is absent and not required ("" = none)

	// ---------------------------
	// Retrieval
	// ---------------------------

	DefaultLimit    int           // result cap when the caller gives none
	MaxLimit        int           // hard clamp for the limit parameter
	DefaultLookback time.Duration // window when lookback_hours is absent
	MaxLookback     time.Duration // hard clamp for the lookback window

	// ---------------------------
	// Logging
	// ---------------------------

	LogLevel   string // zerolog level name
	LogPretty  bool   // console writer instead of JSON
	LogSampleN int    // sample 1/N of Debug/Info lines, 0 disables
}

// Load reads the configuration from the environment. Required keys abort
// the process immediately when missing (fail-fast); tunables fall back to
// defaults matching the original deployment.
func Load() Config {
	driver := def("STORE_DRIVER", "dynamodb")

	cfg := Config{
		StoreDriver:  driver,
		LogTypeIndex: def("LOG_TYPE_INDEX", "TimestampIndex"),
		StoreTimeout: defDur("STORE_TIMEOUT", 5*time.Second),

		MetricsEnabled:   defBool("METRICS_ENABLED", true),
		MetricsNamespace: def("METRICS_NAMESPACE", "SimpleLogService"),

		ServiceName: def("SERVICE_NAME", "simplelog"),
		InstanceID:  fallbackInstanceID(),
		HTTPAddr:    def("HTTP_ADDR", ":8080"),

		MaxBodySize:    defInt64("MAX_BODY_SIZE", 64*1024),
		RequiredFields: splitList(def("REQUIRED_FIELDS", "service_name,log_type,level,message")),
		DefaultLevel:   os.Getenv("DEFAULT_LEVEL"),

		DefaultLimit:    defInt("DEFAULT_LIMIT", 100),
		MaxLimit:        defInt("MAX_LIMIT", 1000),
		DefaultLookback: defDur("DEFAULT_LOOKBACK", 24*time.Hour),
		MaxLookback:     defDur("MAX_LOOKBACK", 168*time.Hour),

		LogLevel:   def("LOG_LEVEL", "info"),
		LogPretty:  defBool("LOG_PRETTY", false),
		LogSampleN: defInt("LOG_SAMPLE_N", 0),
	}

	// The AWS settings only matter when DynamoDB actually backs the store.
	if driver == "dynamodb" {
		cfg.AWSRegion = must("AWS_REGION")
		cfg.TableName = must("DYNAMODB_TABLE_NAME")
	} else {
		cfg.TableName = os.Getenv("DYNAMODB_TABLE_NAME")
	}

	return cfg
}

// must aborts on a missing required env so a misconfigured task dies at
// startup instead of at the first request.
func must(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing required env: %s", key)
	}
	return v
}

func def(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int env %s=%q: %v", key, v, err)
	}
	return n
}

func defInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid int64 env %s=%q: %v", key, v, err)
	}
	return n
}

func defDur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration env %s=%q: %v", key, v, err)
	}
	return d
}

func defBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("invalid bool env %s=%q: %v", key, v, err)
	}
	return b
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fallbackInstanceID identifies this process instance.
//   - default: hostname (unique per task on ECS/Fargate)
//   - fallback: 12 char random hex
func fallbackInstanceID() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	var b [6]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
