// Package recommend turns one user's reading history into ranked book
// candidates by aggregating the reviews of co-readers, people who liked
// the same books the user did.
package recommend
