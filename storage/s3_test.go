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

func TestS3Source_Fetch(t *testing.T) {
	var lastRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastRange = r.Header.Get("Range")
		switch r.URL.Path {
		case "/site-bucket/blobs/AQAAAA":
			w.Header().Set("Content-Type", "text/html")
			w.Header().Set("Content-Length", "13")
			_, _ = w.Write([]byte("<html></html>"))
		case "/site-bucket/blobs/broken":
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
		}
	}))
	defer server.Close()

	source, err := NewS3Source(S3Config{
		Bucket:    "site-bucket",
		Prefix:    "/blobs/",
		Region:    "eu-central-1",
		Endpoint:  server.URL,
		PathStyle: true,
	}, testLogger)
	require.NoError(t, err)
	assert.Equal(t, "s3-site-bucket", source.Name())

	resp, err := source.Fetch(context.Background(), interfaces.BlobRequest{
		BlobID: "AQAAAA",
		Range:  &interfaces.Range{Start: u64(0), End: u64(12)},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("<html></html>"), resp.Data)
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, "bytes=0-12", lastRange)

	_, err = source.Fetch(context.Background(), interfaces.BlobRequest{BlobID: "missing"})
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	_, err = source.Fetch(context.Background(), interfaces.BlobRequest{BlobID: "broken"})
	assert.Error(t, err)
	assert.True(t, Retryable(err))
}

func TestNewS3Source_RequiresBucket(t *testing.T) {
	_, err := NewS3Source(S3Config{}, testLogger)
	assert.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)
}
