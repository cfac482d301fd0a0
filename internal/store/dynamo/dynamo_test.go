package dynamo

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"simplelog/internal/config"
	"simplelog/internal/model"
)

// countingDoer fails every request with a 500 and records how many
// requests the SDK actually sent.
type countingDoer struct {
	calls int
}

func (d *countingDoer) Do(*http.Request) (*http.Response, error) {
	d.calls++
	return &http.Response{
		StatusCode: http.StatusInternalServerError,
		Status:     "500 Internal Server Error",
		Header: http.Header{
			"Content-Type": []string{"application/x-amz-json-1.0"},
		},
		Body: io.NopCloser(strings.NewReader(`{"__type":"InternalServerError"}`)),
	}, nil
}

// A DynamoDB InternalServerError is retryable under the SDK's default
// standard retryer, so a single HTTP attempt here proves the retryer
// was really swapped out and Put stays at-most-once.
func TestPutIssuesExactlyOneAttempt(t *testing.T) {
	doer := &countingDoer{}
	awsCfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		HTTPClient:  doer,
	}
	s := &Store{
		cfg: config.Config{
			TableName:    "simple-log-service",
			StoreTimeout: 2 * time.Second,
		},
		client: newClient(awsCfg),
	}

	err := s.Put(context.Background(), model.LogEntry{
		LogID:       "11111111-2222-3333-4444-555555555555",
		ServiceName: "checkout",
		LogType:     "app",
		Level:       "ERROR",
		Message:     "boom",
		Timestamp:   1700000000,
	})
	if err == nil {
		t.Fatal("expected Put to fail against a server error")
	}
	if doer.calls != 1 {
		t.Fatalf("PutItem sent %d HTTP attempts, want exactly 1", doer.calls)
	}
}
