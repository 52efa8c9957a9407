// Package scores holds the aggregated review scores at the heart of the
// recommendation pipeline: an insertion-ordered accumulator with a
// commutative, associative merge, a popularity-first ranking, and a
// SQLite-backed snapshot store keyed by seed user.
package scores
