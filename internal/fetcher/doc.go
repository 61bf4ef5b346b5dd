// Package fetcher tracks remote data for one page instance: a paginated list,
// a single item keyed by id, or an unparameterized list.
//
// Every fetcher issues at most one request per state change and numbers its
// requests. When a newer request has been issued, the older request's context
// is cancelled and whatever it eventually returns is discarded, so a slow
// response can never overwrite a newer one. Close tears the instance down; any
// resolution after Close is a no-op.
//
// Fetchers never retry. A failed request leaves the last good data in place,
// records a human-readable message and logs the cause.
package fetcher
