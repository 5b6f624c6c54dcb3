// Package storage retrieves site content from pluggable blob sources.
//
// The primary source is a blob aggregator reached over HTTP. Read-only
// mirrors can be added in front of or behind it and are combined with
// MultiSource, which falls back across sources in the configured order.
//
// # Source URI Format
//
// Sources are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - https://aggregator.walrus-testnet.walrus.space (aggregator, no trailing slash)
//   - file:///var/lib/portal/blobs
//   - s3://bucket-name/prefix?region=us-west-2&endpoint=minio.local:9000
//   - ipfs://127.0.0.1:5001/<root directory CID>
//
// Every mirror stores a blob under its URL-safe blob id.
//
// # Retries
//
// FetchWithRetry runs a fetch with a fixed delay between attempts. Server
// errors and transport failures are retried; "not found" and other client
// errors are final. Retriever wraps a source with the retry loop, hashing,
// optional integrity verification and response header synthesis.
package storage
