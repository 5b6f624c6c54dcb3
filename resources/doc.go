// Package resources builds the resource index of a site object.
//
// A site is a registry object whose dynamic fields are the site's resource
// records. Build reads the site object, pages through its dynamic fields,
// fetches every resource record in one batch call and keeps the ones whose
// path passes the extension allow-list. The index is keyed by file basename.
//
// Malformed records are isolated: they end up in ResourceIndex.Failures and
// never abort the build. Only a site object without a resource table fails
// the whole build (interfaces.ErrMalformedObject).
package resources
