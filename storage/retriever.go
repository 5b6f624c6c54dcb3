package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ruteri/sites-portal-backend/cryptoutils"
	"github.com/ruteri/sites-portal-backend/interfaces"
	"github.com/ruteri/sites-portal-backend/metrics"
)

const (
	HeaderObjectVersion = "x-resource-sui-object-version"
	HeaderObjectID      = "x-resource-sui-object-id"
	HeaderCachedAt      = "x-unix-time-cached"
)

// RetrieverConfig configures content retrieval.
type RetrieverConfig struct {
	MaxRetries int
	RetryDelay time.Duration

	// VerifyHash rejects content that does not match the resource's recorded
	// hash. A mismatch consumes a retry.
	VerifyHash bool
}

// Retriever fetches resource content from a blob source.
type Retriever struct {
	source  interfaces.BlobSource
	cfg     RetrieverConfig
	log     *slog.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// NewRetriever creates a retriever over source.
func NewRetriever(source interfaces.BlobSource, cfg RetrieverConfig, log *slog.Logger, collector *metrics.Collector) *Retriever {
	return &Retriever{
		source:  source,
		cfg:     cfg,
		log:     log,
		metrics: collector,
		now:     time.Now,
	}
}

// Retrieve fetches the content of resource with retries.
func (r *Retriever) Retrieve(ctx context.Context, resource *interfaces.ResourcePath) (*interfaces.RetrievedBlob, error) {
	req := interfaces.BlobRequest{BlobID: resource.BlobID, Range: resource.Range}

	resp, err := FetchWithRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryDelay, r.log, func(ctx context.Context) (*interfaces.BlobResponse, error) {
		resp, err := r.source.Fetch(ctx, req)
		if err == nil && r.cfg.VerifyHash {
			if verr := cryptoutils.VerifyBlobHash(resp.Data, resource.BlobHash); verr != nil {
				resp, err = nil, fmt.Errorf("blob %s: %w", resource.BlobID, verr)
			}
		}
		r.metrics.ObserveBlobFetch(r.source.Name(), fetchOutcome(err))
		return resp, err
	})
	if err != nil {
		return nil, fmt.Errorf("could not retrieve %s (blob %s): %w", resource.Path, resource.BlobID, err)
	}

	fetchedAt := r.now()
	return &interfaces.RetrievedBlob{
		Data:      resp.Data,
		Headers:   ResourceHeaders(resource, resp.ContentType, fetchedAt),
		FetchedAt: fetchedAt,
		SHA256:    cryptoutils.SHA256(resp.Data),
		Source:    r.source.Name(),
	}, nil
}

// ResourceHeaders returns the recorded resource headers plus the object
// version, object id and fetch time headers. The source's content type is
// used only when the resource records none.
func ResourceHeaders(resource *interfaces.ResourcePath, sourceContentType string, fetchedAt time.Time) http.Header {
	headers := make(http.Header, len(resource.Headers)+3)
	for _, h := range resource.Headers {
		headers.Set(h.Key, h.Value)
	}
	if headers.Get("Content-Type") == "" && sourceContentType != "" {
		headers.Set("Content-Type", sourceContentType)
	}

	headers.Set(HeaderObjectVersion, resource.Version)
	headers.Set(HeaderObjectID, resource.ObjectID.Hex())
	headers.Set(HeaderCachedAt, strconv.FormatInt(fetchedAt.UnixMilli(), 10))
	return headers
}
