// Package source fetches pages from the catalog site and caches the raw
// bodies on disk.
//
// The cache is keyed by the exact site-relative path, so a resource is
// downloaded at most once until its entry is removed with Invalidate.
// Fetches retry transient failures sequentially with a per-attempt timeout
// that grows with the attempt number. Concurrent processes sharing one
// cache directory are not coordinated; the pipeline is single-threaded.
//
// Document wraps a fetched body together with its parsed HTML tree and the
// small set of node queries the rest of the system needs.
package source
