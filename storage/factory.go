package storage

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ruteri/sites-portal-backend/interfaces"
)

const defaultIPFSTimeout = 30 * time.Second

// SourceFactory creates blob sources from location URIs.
type SourceFactory struct {
	log        *slog.Logger
	httpClient *http.Client
}

// NewSourceFactory creates a factory. httpClient is used by aggregator
// sources and may be nil.
func NewSourceFactory(logger *slog.Logger, httpClient *http.Client) *SourceFactory {
	return &SourceFactory{
		log:        logger,
		httpClient: httpClient,
	}
}

// BlobSourceFor creates a source from a location.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - http://, https:// - blob aggregator
//   - file:// - local directory mirror
//   - s3:// - Amazon S3 or compatible object storage mirror
//   - ipfs:// - IPFS directory mirror
func (sf *SourceFactory) BlobSourceFor(location interfaces.BlobSourceLocation) (interfaces.BlobSource, error) {
	switch location.Scheme {
	case "http", "https":
		return NewAggregatorSource(location.Raw, sf.httpClient, sf.log)
	case "file":
		return sf.createFileSource(location)
	case "s3":
		return sf.createS3Source(location)
	case "ipfs":
		return sf.createIPFSSource(location)
	default:
		return nil, fmt.Errorf("%w: unsupported blob source scheme: %s", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiSource creates a source falling back across locations in order.
// Locations that cannot be turned into a source are logged and skipped.
// Returns an error if no valid source could be created.
func (sf *SourceFactory) CreateMultiSource(locations []interfaces.BlobSourceLocation) (interfaces.BlobSource, error) {
	sources := make([]interfaces.BlobSource, 0, len(locations))

	for _, location := range locations {
		source, err := sf.BlobSourceFor(location)
		if err != nil {
			sf.log.Warn("Failed to create blob source",
				"err", err,
				slog.String("locationURI", location.String()))
			continue
		}
		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no valid blob sources created")
	}
	if len(sources) == 1 {
		return sources[0], nil
	}

	return NewMultiSource(sources, sf.log), nil
}

// createFileSource handles file:///absolute/path and file://./relative/path.
func (sf *SourceFactory) createFileSource(location interfaces.BlobSourceLocation) (interfaces.BlobSource, error) {
	sf.log.Debug("Creating file source", slog.String("uri", location.String()))

	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, location.String())
	}

	return NewFileSource(path, sf.log)
}

// createS3Source handles s3://[ACCESS_KEY:SECRET_KEY@]bucket/prefix?region=us-west-2&endpoint=host:port&path_style=true
func (sf *SourceFactory) createS3Source(location interfaces.BlobSourceLocation) (interfaces.BlobSource, error) {
	sf.log.Debug("Creating S3 source", slog.String("bucket", location.Host))

	cfg := S3Config{
		Bucket:    location.Host,
		Prefix:    strings.TrimPrefix(location.Path, "/"),
		Region:    location.GetParam("region"),
		Endpoint:  location.GetParam("endpoint"),
		PathStyle: location.GetParam("path_style") == "true",
	}
	if location.Auth != "" {
		accessKey, secretKey, _ := strings.Cut(location.Auth, ":")
		cfg.AccessKey = accessKey
		cfg.SecretKey = secretKey
	}

	return NewS3Source(cfg, sf.log)
}

// createIPFSSource handles ipfs://host:port/<root CID>?timeout=30s
func (sf *SourceFactory) createIPFSSource(location interfaces.BlobSourceLocation) (interfaces.BlobSource, error) {
	sf.log.Debug("Creating IPFS source", slog.String("uri", location.String()))

	apiAddr := location.Host
	if !strings.Contains(apiAddr, ":") {
		apiAddr += ":5001"
	}

	timeout := defaultIPFSTimeout
	if raw := location.GetParam("timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid IPFS timeout %q: %w", interfaces.ErrInvalidLocationURI, raw, err)
		}
		timeout = parsed
	}

	return NewIPFSSource(apiAddr, location.Path, timeout, sf.log)
}
