// Package registry implements interfaces.RegistryClient against the Sui
// JSON-RPC API, together with test doubles for the rest of the module.
//
// SuiClient speaks JSON-RPC 2.0 through go-ethereum's rpc client and calls:
//
//   - sui_getObject
//   - sui_multiGetObjects
//   - suix_getDynamicFields
//   - suix_resolveNameServiceAddress
//
// Several endpoints may be configured. A call moves on to the next endpoint
// only when the previous one could not be reached; an error returned by a
// node in a JSON-RPC response is final. When every endpoint fails the error
// wraps interfaces.ErrUpstreamUnavailable.
//
// Calls can be throttled client side with a token bucket, see
// ClientConfig.RateLimit.
//
// # Test doubles
//
// MockRegistryClient is an in-memory registry with helpers to lay out sites
// the way the site package stores them on chain (AddSite). MockRegistry is a
// testify mock for cases that need precise call expectations.
package registry
