package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// AggregatorSource fetches blobs from a blob aggregator's HTTP API:
//
//	GET {base}/v1/blobs/{blob id}
type AggregatorSource struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewAggregatorSource creates a source for the aggregator at baseURL, which
// must be an http(s) URL without a trailing slash.
func NewAggregatorSource(baseURL string, client *http.Client, log *slog.Logger) (*AggregatorSource, error) {
	if strings.HasSuffix(baseURL, "/") {
		return nil, fmt.Errorf("%w: aggregator URL must not end with a slash: %s", interfaces.ErrInvalidLocationURI, baseURL)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", interfaces.ErrInvalidLocationURI, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: aggregator URL must be an absolute http(s) URL: %s", interfaces.ErrInvalidLocationURI, baseURL)
	}

	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &AggregatorSource{
		baseURL: baseURL,
		client:  client,
		log:     log,
	}, nil
}

// BlobURL returns the aggregator URL for blobID.
func (s *AggregatorSource) BlobURL(blobID string) string {
	return s.baseURL + "/v1/blobs/" + url.PathEscape(blobID)
}

// Fetch downloads the blob, sending a Range header when the request has one.
func (s *AggregatorSource) Fetch(ctx context.Context, req interfaces.BlobRequest) (*interfaces.BlobResponse, error) {
	start := time.Now()
	blobURL := s.BlobURL(req.BlobID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: could not build request for blob %s: %w", interfaces.ErrBadInput, req.BlobID, err)
	}
	if rangeHeader := req.Range.RequestHeader(); rangeHeader != "" {
		httpReq.Header.Set("Range", rangeHeader)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", interfaces.ErrUpstreamUnavailable, s.Name(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: blob %s", interfaces.ErrNotFound, req.BlobID)
	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned %s for blob %s", ErrServerError, s.Name(), resp.Status, req.BlobID)
	default:
		return nil, fmt.Errorf("%w: %s returned %s for blob %s", ErrClientError, s.Name(), resp.Status, req.BlobID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading blob %s: %w", interfaces.ErrUpstreamUnavailable, req.BlobID, err)
	}

	s.log.Debug("Fetched blob from aggregator",
		slog.String("blobId", req.BlobID),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.BlobResponse{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (s *AggregatorSource) Name() string {
	return "aggregator"
}

func (s *AggregatorSource) LocationURI() string {
	return s.baseURL
}
