// Package lists filters batches of books collected from curated lists,
// public shelves, and explicit ids into reports.
package lists
