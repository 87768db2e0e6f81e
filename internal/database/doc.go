// Package database provides SQLite-based attendance storage for the lookup
// server.
//
// Each delegate has at most one attendance row. The first check-in wins and
// later check-ins return the stored record unchanged. The database is a
// single file (modernc.org/sqlite, no CGO) opened in WAL mode with a single
// writer connection.
package database
