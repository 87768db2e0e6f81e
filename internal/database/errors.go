package database

import "errors"

var (
	// ErrEmptyDelegateID is returned when a delegate identifier is blank.
	ErrEmptyDelegateID = errors.New("delegate id is required")

	// ErrEmptyScanner is returned when the scanning station is blank.
	ErrEmptyScanner = errors.New("scanned by is required")

	// ErrDatabaseNotFound is returned by Open when CreateIfNotExists is false
	// and no database file exists.
	ErrDatabaseNotFound = errors.New("database not found")
)
