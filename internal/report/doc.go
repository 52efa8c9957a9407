// Package report condenses books into human-skimmable report lines and
// writes them to the report file and the console.
package report
