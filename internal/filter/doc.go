// Package filter narrows ranked candidate books down to a final selection
// by evaluating pluggable predicates against each book's detail data.
package filter
