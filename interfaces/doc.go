// Package interfaces defines the core types and collaborator contracts of the
// sites portal, separating interface definitions from implementations.
//
// # Resolution Types
//
//   - DomainDetails: the {subdomain, path} split of an inbound request URL
//   - ObjectID: 32-byte registry object address
//   - ResourcePath: one file entry of a site's resource table
//   - ResourceIndex: basename to ResourcePath mapping built for one request
//   - RetrievedBlob: verified bytes fetched from a blob source
//
// # Registry Interfaces
//
// RegistryClient: object, dynamic field, batch and name lookups against the
// registry network's JSON-RPC endpoint.
//
// NameService: resolves a human-readable name to an ObjectID.
//
// # Storage Interfaces
//
// BlobSource: read-only access to blob bytes by URL-safe blob id, implemented
// by the aggregator and the file, S3 and IPFS mirrors.
//
// BlobSourceFactory: creates blob sources from location URIs.
//
// # Errors
//
// The error taxonomy shared by all components lives in errors.go. Components
// wrap these sentinels with %w and the HTTP boundary classifies them with
// errors.Is.
package interfaces
