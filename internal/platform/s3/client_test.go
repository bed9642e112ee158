package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testArchiver creates an Archiver backed by a test HTTP server.
// The handler receives real S3 XML-protocol requests.
func testArchiver(t *testing.T, handler http.Handler) *Archiver {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := s3.New(s3.Options{
		Region:           "fsn1",
		BaseEndpoint:     aws.String(server.URL),
		UsePathStyle:     true,
		RetryMaxAttempts: 1,
		Credentials:      credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
	})

	return &Archiver{s3: client, bucket: "seedmaster-artifacts", maxRetries: 2, initialDelay: time.Millisecond}
}

// xmlResponse writes an S3-style XML response.
func xmlResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func s3Error(code, message string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<Error>
  <Code>%s</Code>
  <Message>%s</Message>
</Error>`, code, message)
}

// fakeBucket is an in-memory bucket speaking enough of the S3 protocol.
type fakeBucket struct {
	mu      sync.Mutex
	exists  bool
	created int
	objects map[string][]byte
	types   map[string]string
	putErrs []int
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	const prefix = "/seedmaster-artifacts"
	key := ""
	if len(r.URL.Path) > len(prefix)+1 {
		key = r.URL.Path[len(prefix)+1:]
	}

	switch {
	case r.Method == http.MethodHead && key == "":
		if !b.exists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && key == "":
		b.exists = true
		b.created++
		xmlResponse(w, http.StatusOK, `<?xml version="1.0" encoding="UTF-8"?><CreateBucketResult/>`)
	case r.Method == http.MethodPut:
		if len(b.putErrs) > 0 {
			status := b.putErrs[0]
			b.putErrs = b.putErrs[1:]
			xmlResponse(w, status, s3Error("SlowDown", "Please reduce your request rate."))
			return
		}
		body, _ := io.ReadAll(r.Body)
		b.objects[key] = body
		b.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeBucket(exists bool) *fakeBucket {
	return &fakeBucket{exists: exists, objects: map[string][]byte{}, types: map[string]string{}}
}

func TestArchive_CreatesBucket(t *testing.T) {
	bucket := newFakeBucket(false)
	a := testArchiver(t, bucket)

	err := a.Archive(context.Background(), "PTMaster/42/master.config.json", []byte(`{"slave-name":"PTSlave-under-42"}`))

	require.NoError(t, err)
	assert.Equal(t, 1, bucket.created)
	assert.Equal(t, `{"slave-name":"PTSlave-under-42"}`, string(bucket.objects["PTMaster/42/master.config.json"]))
	assert.Equal(t, "application/json", bucket.types["PTMaster/42/master.config.json"])
}

func TestArchive_ExistingBucket(t *testing.T) {
	bucket := newFakeBucket(true)
	a := testArchiver(t, bucket)

	require.NoError(t, a.Archive(context.Background(), "k", []byte("{}")))
	assert.Zero(t, bucket.created)
}

func TestArchive_RetriesThrottling(t *testing.T) {
	bucket := newFakeBucket(true)
	bucket.putErrs = []int{http.StatusServiceUnavailable}
	a := testArchiver(t, bucket)

	require.NoError(t, a.Archive(context.Background(), "k", []byte("{}")))
	assert.Equal(t, []byte("{}"), bucket.objects["k"])
}

func TestArchive_AccessDenied(t *testing.T) {
	var puts atomic.Int32
	a := testArchiver(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		puts.Add(1)
		xmlResponse(w, http.StatusForbidden, s3Error("AccessDenied", "Access Denied"))
	}))

	err := a.Archive(context.Background(), "k", []byte("{}"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to put object k in bucket seedmaster-artifacts")
	assert.Equal(t, int32(1), puts.Load())
}

func TestArchive_BucketCheckFails(t *testing.T) {
	a := testArchiver(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	err := a.Archive(context.Background(), "k", []byte("{}"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check bucket")
}

func TestNewArchiver(t *testing.T) {
	a, err := NewArchiver(context.Background(), Options{
		Endpoint:  "https://fsn1.your-objectstorage.com",
		Region:    "fsn1",
		Bucket:    "seedmaster-artifacts",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "seedmaster-artifacts", a.bucket)

	_, err = NewArchiver(context.Background(), Options{Region: "fsn1"})
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	owned := &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}
	notFound := &smithy.GenericAPIError{Code: "NoSuchBucket"}
	slowDown := &smithy.GenericAPIError{Code: "SlowDown", Fault: smithy.FaultServer}
	denied := &smithy.GenericAPIError{Code: "AccessDenied", Fault: smithy.FaultClient}

	assert.False(t, isBucketAlreadyOwnedByYou(nil))
	assert.True(t, isBucketAlreadyOwnedByYou(fmt.Errorf("wrapped: %w", owned)))
	assert.True(t, isBucketAlreadyOwnedByYou(&s3types.BucketAlreadyExists{}))

	assert.False(t, isNotFoundError(nil))
	assert.True(t, isNotFoundError(fmt.Errorf("wrapped: %w", notFound)))
	assert.True(t, isNotFoundError(&s3types.NotFound{}))

	assert.True(t, isRetryable(slowDown))
	assert.False(t, isRetryable(denied))
	assert.False(t, isRetryable(errors.New("plain")))
}
