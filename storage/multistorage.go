package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

// MultiSource implements interfaces.BlobSource using multiple sources with fallback.
type MultiSource struct {
	sources []interfaces.BlobSource
	log     *slog.Logger
}

// NewMultiSource creates a new multi-source with fallback in the given order.
func NewMultiSource(sources []interfaces.BlobSource, logger *slog.Logger) *MultiSource {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiSource{
		sources: sources,
		log:     logger,
	}
}

// Fetch returns the first successful response. When every source fails the
// error wraps interfaces.ErrNotFound only if no source held the blob and none
// failed for another reason.
func (m *MultiSource) Fetch(ctx context.Context, req interfaces.BlobRequest) (*interfaces.BlobResponse, error) {
	start := time.Now()
	var failures []error

	for _, source := range m.sources {
		resp, err := source.Fetch(ctx, req)
		if err == nil {
			m.log.Debug("Successfully fetched blob",
				slog.String("source", source.Name()),
				slog.String("blobId", req.BlobID),
				slog.Duration("duration", time.Since(start)))
			return resp, nil
		}

		if ctx.Err() != nil {
			return nil, err
		}

		if !errors.Is(err, interfaces.ErrNotFound) {
			failures = append(failures, fmt.Errorf("%s: %w", source.Name(), err))
		}
		m.log.Debug("Failed to fetch from source",
			slog.String("source", source.Name()),
			slog.String("blobId", req.BlobID),
			"err", err)
	}

	if len(failures) == 0 {
		return nil, fmt.Errorf("%w: blob %s is not held by any of %d sources", interfaces.ErrNotFound, req.BlobID, len(m.sources))
	}

	m.log.Warn("All sources failed to fetch blob",
		slog.String("blobId", req.BlobID),
		slog.Int("failedSources", len(failures)),
		slog.Duration("duration", time.Since(start)))

	return nil, fmt.Errorf("%w: all sources failed to fetch %s: %w", interfaces.ErrUpstreamUnavailable, req.BlobID, errors.Join(failures...))
}

// Name returns the name of this source.
func (m *MultiSource) Name() string {
	return "multi-source"
}

// LocationURI returns a combined location URI of all sources.
func (m *MultiSource) LocationURI() string {
	locations := make([]string, 0, len(m.sources))
	for _, source := range m.sources {
		locations = append(locations, source.LocationURI())
	}

	return "multi:[" + strings.Join(locations, ",") + "]"
}
