// Package fetcher runs the portal pipeline for one request: URL to subdomain,
// subdomain to site object, site object to resource index, resource to bytes.
//
// Every call rebuilds the index from the registry so responses always
// reflect the current on-chain state. Nothing is shared between calls except
// the immutable configuration and collaborators given to New.
package fetcher
