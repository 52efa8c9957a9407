// Package book exposes one book's derived facts: who reviewed it and how
// highly, its genres and shelves, its author, series, and publication
// year, and whether an audiobook edition exists.
//
// An Entity is built from the book's detail page plus the structured
// payload embedded in it. Missing single fields degrade to sentinel
// values; a missing or malformed payload fails construction outright.
package book
