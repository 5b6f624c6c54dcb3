// Package resolver turns request URLs into registry object ids.
//
// GetSubdomainAndPath splits a URL into the subdomain and path relative to the
// portal's domain suffix. ObjectResolver then maps the subdomain to an object
// id by trying an ordered list of strategies:
//
//  1. StaticOverrides: operator-configured reserved names
//  2. CompactIDStrategy: base-36 encoded object ids used as the label
//  3. NameServiceStrategy: lookup through an interfaces.NameService
//
// The first strategy to produce an id wins. Strategies that do not apply
// return ErrStrategySkipped and resolution moves on. Because the compact id
// strategy runs before the name service, a name that decodes as an object id
// can never be claimed through the name service.
//
// Two name services are provided: SuiNSResolver, which asks the registry
// network, and DNSLinkResolver, which reads portal-object TXT records.
package resolver
