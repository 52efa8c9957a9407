// Command bookscout mines book recommendations from the reviews of
// co-readers and filters batches of books from lists and shelves.
package main
