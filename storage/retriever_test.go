package storage

import (
	"context"
	"crypto/sha256"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

func testResource(content []byte) *interfaces.ResourcePath {
	hash := sha256.Sum256(content)
	return &interfaces.ResourcePath{
		Path:     "/index.html",
		ObjectID: interfaces.ObjectID{0x0a},
		BlobID:   "blob-1",
		BlobHash: hash[:],
		Version:  "12",
		Headers: []interfaces.Header{
			{Key: "content-type", Value: "text/html"},
			{Key: "cache-control", Value: "max-age=60"},
		},
	}
}

func TestRetriever_AggregatorRetries(t *testing.T) {
	content := []byte("<html>site</html>")
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(content)
	}))
	defer server.Close()

	source, err := NewAggregatorSource(server.URL, server.Client(), testLogger)
	require.NoError(t, err)

	retriever := NewRetriever(source, RetrieverConfig{MaxRetries: 2, RetryDelay: time.Millisecond, VerifyHash: true}, testLogger, nil)
	fixed := time.UnixMilli(1700000000123)
	retriever.now = func() time.Time { return fixed }

	blob, err := retriever.Retrieve(context.Background(), testResource(content))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	assert.Equal(t, content, blob.Data)
	assert.Equal(t, sha256.Sum256(content), blob.SHA256)
	assert.Equal(t, "aggregator", blob.Source)
	assert.Equal(t, fixed, blob.FetchedAt)

	assert.Equal(t, "text/html", blob.Headers.Get("content-type"))
	assert.Equal(t, "max-age=60", blob.Headers.Get("cache-control"))
	assert.Equal(t, "12", blob.Headers.Get(HeaderObjectVersion))
	assert.Equal(t, interfaces.ObjectID{0x0a}.Hex(), blob.Headers.Get(HeaderObjectID))
	assert.Equal(t, "1700000000123", blob.Headers.Get(HeaderCachedAt))
}

func TestRetriever_IntegrityMismatch(t *testing.T) {
	resource := testResource([]byte("expected"))

	source := &MockBlobSource{name: "mock"}
	source.On("Fetch", mock.Anything, mock.Anything).Return(&interfaces.BlobResponse{Data: []byte("tampered")}, nil)

	verifying := NewRetriever(source, RetrieverConfig{MaxRetries: 1, RetryDelay: time.Millisecond, VerifyHash: true}, testLogger, nil)
	_, err := verifying.Retrieve(context.Background(), resource)
	assert.ErrorIs(t, err, interfaces.ErrIntegrityMismatch)
	source.AssertNumberOfCalls(t, "Fetch", 2)

	lenient := NewRetriever(source, RetrieverConfig{MaxRetries: 1, RetryDelay: time.Millisecond}, testLogger, nil)
	blob, err := lenient.Retrieve(context.Background(), resource)
	require.NoError(t, err)
	assert.Equal(t, []byte("tampered"), blob.Data)
}

func TestRetriever_NotFoundIsNotRetried(t *testing.T) {
	source := &MockBlobSource{name: "mock"}
	source.On("Fetch", mock.Anything, interfaces.BlobRequest{BlobID: "blob-1"}).Return(nil, interfaces.ErrNotFound)

	retriever := NewRetriever(source, RetrieverConfig{MaxRetries: 3, RetryDelay: time.Millisecond}, testLogger, nil)
	_, err := retriever.Retrieve(context.Background(), testResource(nil))
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	source.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestResourceHeaders_SourceContentTypeFallback(t *testing.T) {
	resource := &interfaces.ResourcePath{ObjectID: interfaces.ObjectID{0x01}, Version: "1"}

	headers := ResourceHeaders(resource, "text/css", time.UnixMilli(5))
	assert.Equal(t, "text/css", headers.Get("Content-Type"))
	assert.Equal(t, "5", headers.Get(HeaderCachedAt))

	resource.Headers = []interfaces.Header{{Key: "Content-Type", Value: "text/html"}}
	headers = ResourceHeaders(resource, "text/css", time.UnixMilli(5))
	assert.Equal(t, "text/html", headers.Get("Content-Type"))
}
