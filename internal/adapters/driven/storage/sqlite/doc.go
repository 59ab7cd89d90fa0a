// Package sqlite provides SQLite-backed persistence for documents and
// the vector index. A single database file holds both; wrapper types
// expose the individual store interfaces.
package sqlite
