// Package store mirrors the file index into a SQLite database so other
// tools can query records with SQL. The JSON index stays the canonical
// artifact; the mirror is rewritten wholesale after each build.
package store
