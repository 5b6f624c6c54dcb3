// Package main (cmd/httpserver) runs the portal server.
//
// The server resolves site URLs to registry objects, builds their resource
// index from the registry network and fetches the content from the blob
// aggregator, falling back to any configured mirrors.
//
// Configuration comes from flags, most of which can also be set through the
// environment (PORT, PORTAL_DOMAIN_NAME_LENGTH, AGGREGATOR_URL, SITE_PACKAGE,
// RPC_URL_LIST, SUI_NETWORK, WALRUS_NETWORK, NODE_ENV).
//
// The server implements graceful shutdown on receiving termination signals (SIGINT/SIGTERM)
// and supports health checks, metrics collection, and optional profiling endpoints.
//
// Example usage:
//
//	portal-server --port=5000 \
//	    --portal-domain-name-length=7 \
//	    --rpc-url-list=https://fullnode.testnet.sui.io \
//	    --static-site=landing=0x1234 \
//	    --blob-mirror=s3://walrus-mirror/blobs?region=eu-west-1
package main
