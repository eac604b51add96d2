// Package pg opens the PostgreSQL pool, applies the embedded goose migrations
// and classifies driver errors for the repositories built on top of it.
package pg
