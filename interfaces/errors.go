package interfaces

import "errors"

var (
	// ErrBadInput is returned for a missing or malformed request parameter.
	ErrBadInput = errors.New("bad input")

	// ErrNotFound is returned when a lookup succeeded but produced no result:
	// no matching object, name, resource table entry or blob.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable is returned when the registry, the name service or
	// a blob source could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedObject is returned when a resolved object exists but does not
	// have the structure of a site.
	ErrMalformedObject = errors.New("malformed site object")

	// ErrIntegrityMismatch is returned when fetched bytes do not hash to the
	// value recorded for the resource.
	ErrIntegrityMismatch = errors.New("content integrity mismatch")

	// ErrSiteEmpty is returned when a site resolved but its resource index has
	// no entries. It is an outcome, not a failure.
	ErrSiteEmpty = errors.New("site contains no resources")

	// ErrInvalidLocationURI is returned when a blob source URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid blob source URI")
)
