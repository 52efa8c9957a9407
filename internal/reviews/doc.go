// Package reviews scans users' paginated review listings and converts the
// star ratings found there into per-book scores.
package reviews
