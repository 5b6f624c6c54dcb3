package interfaces

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// BlobRequest identifies the bytes to fetch from a blob source.
type BlobRequest struct {
	// BlobID is the URL-safe blob identifier.
	BlobID string

	// Range optionally restricts the fetch to a byte range.
	Range *Range
}

// BlobResponse is the raw result of one successful source fetch.
type BlobResponse struct {
	Data []byte

	// ContentType is the media type reported by the source, if any.
	ContentType string
}

// BlobSource provides read access to content-addressed blobs.
type BlobSource interface {
	// Fetch retrieves the requested blob bytes. Returns ErrNotFound when the
	// source does not hold the blob and ErrUpstreamUnavailable when the source
	// cannot be reached.
	Fetch(ctx context.Context, req BlobRequest) (*BlobResponse, error)

	// Name returns identifier for logging and metrics.
	Name() string

	// LocationURI returns URI identifying this source.
	LocationURI() string
}

// BlobSourceLocation represents URI for a blob source.
type BlobSourceLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname with optional port
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewBlobSourceLocation creates a new source location from a URI string with validation.
func NewBlobSourceLocation(uri string) (BlobSourceLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return BlobSourceLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	switch scheme {
	case "http", "https", "file", "s3", "ipfs":
	default:
		return BlobSourceLocation{}, fmt.Errorf("%w: unsupported blob source scheme %q", ErrInvalidLocationURI, parsed.Scheme)
	}

	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return BlobSourceLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc BlobSourceLocation) String() string {
	return loc.Raw
}

// IsAggregator checks if this is an HTTP aggregator location.
func (loc BlobSourceLocation) IsAggregator() bool {
	return loc.Scheme == "http" || loc.Scheme == "https"
}

// GetParam returns a query parameter value.
func (loc BlobSourceLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// BlobSourceFactory creates blob sources.
type BlobSourceFactory interface {
	// BlobSourceFor creates a source from a location.
	BlobSourceFor(location BlobSourceLocation) (BlobSource, error)

	// CreateMultiSource creates a source that falls back across locations in order.
	CreateMultiSource(locations []BlobSourceLocation) (BlobSource, error)
}
