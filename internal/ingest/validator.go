// internal/ingest/validator.go
package ingest

import (
	"fmt"
	"strings"

	"simplelog/internal/clock"
	"simplelog/internal/config"
	"simplelog/internal/model"

	"github.com/google/uuid"
)

// Request is the decoded ingestion payload. Pointer fields distinguish a
// field that was absent from one supplied empty, which is what the
// required-field check needs.
type Request struct {
	ServiceName *string        `json:"service_name"`
	LogType     *string        `json:"log_type"`
	Level       *string        `json:"level"`
	Severity    *string        `json:"severity"` // accepted alias for level
	Message     *string        `json:"message"`
	Timestamp   *int64         `json:"timestamp"`
	Metadata    map[string]any `json:"metadata"`
}

// MissingFieldsError names every required field the payload lacks, not just
// the first, so a caller fixes all of them in one round trip.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// InvalidLevelError reports a level outside the vocabulary.
type InvalidLevelError struct {
	Value   string
	Allowed []string
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid level %q: allowed values are %s", e.Value, strings.Join(e.Allowed, ", "))
}

// Validator turns a raw Request into a canonical LogEntry. It has no side
// effects beyond NewID/Now, both injectable, so it tests in isolation.
type Validator struct {
	required     []string
	defaultLevel string

	NewID func() string
	Now   func() int64
}

func NewValidator(cfg config.Config) *Validator {
	v := &Validator{
		required:     cfg.RequiredFields,
		defaultLevel: cfg.DefaultLevel,
		NewID:        uuid.NewString,
		Now:          clock.Unix,
	}
	// A deployment that drops level from the required set gets INFO as the
	// implied default unless it configured its own.
	if v.defaultLevel == "" && !v.requires("level") && !v.requires("severity") {
		v.defaultLevel = "INFO"
	}
	return v
}

// ValidateAndBuild checks the payload and assembles the entry to store.
//
// Normalization rules:
//   - level is uppercased; free text is stored untouched (no trimming,
//     a trimmed message is not the message the client sent)
//   - metadata passes through opaque and stays absent when not supplied
//   - log_id is always server-generated
//   - a caller-supplied timestamp is kept verbatim, otherwise the current
//     second is assigned
func (v *Validator) ValidateAndBuild(req Request) (model.LogEntry, error) {
	var missing []string
	for _, name := range v.required {
		if !present(req, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return model.LogEntry{}, &MissingFieldsError{Fields: missing}
	}

	level := v.defaultLevel
	if raw := req.level(); raw != nil {
		normalized, ok := model.NormalizeLevel(*raw)
		if !ok {
			return model.LogEntry{}, &InvalidLevelError{Value: *raw, Allowed: model.Levels}
		}
		level = normalized
	}

	ts := v.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}

	entry := model.LogEntry{
		LogID:     v.NewID(),
		Timestamp: ts,
		Level:     level,
	}
	// A supplied metadata object is carried even when empty; only an
	// absent key leaves the field nil.
	if req.Metadata != nil {
		entry.Metadata = &req.Metadata
	}
	if req.ServiceName != nil {
		entry.ServiceName = *req.ServiceName
	}
	if req.LogType != nil {
		entry.LogType = *req.LogType
	}
	if req.Message != nil {
		entry.Message = *req.Message
	}
	return entry, nil
}

func (v *Validator) requires(name string) bool {
	for _, r := range v.required {
		if r == name {
			return true
		}
	}
	return false
}

// level resolves the level/severity alias pair, level winning when both
// are present.
func (r Request) level() *string {
	if r.Level != nil {
		return r.Level
	}
	return r.Severity
}

// present implements the required-field check for one configured name.
// An empty string counts as missing: a blank partition key or message is
// as useless as an absent one.
func present(r Request, name string) bool {
	switch name {
	case "service_name":
		return r.ServiceName != nil && *r.ServiceName != ""
	case "log_type":
		return r.LogType != nil && *r.LogType != ""
	case "level", "severity":
		return r.level() != nil && *r.level() != ""
	case "message":
		return r.Message != nil && *r.Message != ""
	case "timestamp":
		return r.Timestamp != nil
	case "metadata":
		return r.Metadata != nil
	default:
		// Unknown names in REQUIRED_FIELDS can never be satisfied; fail
		// loud instead of silently accepting everything.
		return false
	}
}
