package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

func u64(v uint64) *uint64 { return &v }

func TestNewAggregatorSource_Validation(t *testing.T) {
	_, err := NewAggregatorSource("https://aggregator.example/", nil, testLogger)
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	_, err = NewAggregatorSource("aggregator.example", nil, testLogger)
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	source, err := NewAggregatorSource("https://aggregator.example", nil, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "https://aggregator.example/v1/blobs/AQAAAA-_", source.BlobURL("AQAAAA-_"))
	assert.Equal(t, "https://aggregator.example/v1/blobs/a%2Fb", source.BlobURL("a/b"))
}

func TestAggregatorSource_Fetch(t *testing.T) {
	var rangeHeader, requestPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestPath = r.URL.EscapedPath()
		rangeHeader = r.Header.Get("Range")

		switch r.URL.Path {
		case "/v1/blobs/present":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("<html>hello</html>"))
		case "/v1/blobs/broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "/v1/blobs/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	source, err := NewAggregatorSource(server.URL, server.Client(), testLogger)
	require.NoError(t, err)

	resp, err := source.Fetch(context.Background(), interfaces.BlobRequest{
		BlobID: "present",
		Range:  &interfaces.Range{Start: u64(0), End: u64(99)},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("<html>hello</html>"), resp.Data)
	assert.Equal(t, "application/octet-stream", resp.ContentType)
	assert.Equal(t, "bytes=0-99", rangeHeader)
	assert.Equal(t, "/v1/blobs/present", requestPath)

	_, err = source.Fetch(context.Background(), interfaces.BlobRequest{BlobID: "present"})
	require.NoError(t, err)
	assert.Empty(t, rangeHeader)

	_, err = source.Fetch(context.Background(), interfaces.BlobRequest{BlobID: "missing"})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = source.Fetch(context.Background(), interfaces.BlobRequest{BlobID: "broken"})
	assert.ErrorIs(t, err, ErrServerError)

	_, err = source.Fetch(context.Background(), interfaces.BlobRequest{BlobID: "forbidden"})
	assert.ErrorIs(t, err, ErrClientError)
}

func TestAggregatorSource_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	source, err := NewAggregatorSource(url, nil, testLogger)
	require.NoError(t, err)

	_, err = source.Fetch(context.Background(), interfaces.BlobRequest{BlobID: "any"})
	assert.ErrorIs(t, err, interfaces.ErrUpstreamUnavailable)
	assert.True(t, Retryable(err))
}
