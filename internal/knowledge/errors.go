package knowledge

import "errors"

// Classified failure modes for the source database. Callers branch on these
// with errors.Is; anything else coming out of this package is an ordinary
// wrapped I/O or storage error.
var (
	// ErrNotFound: the source database file does not exist. On a Mac this
	// usually means Screen Time is disabled.
	ErrNotFound = errors.New("source database not found")

	// ErrPermissionDenied: the file exists but is unreadable. The usual cause
	// is a missing Full Disk Access grant for the running process.
	ErrPermissionDenied = errors.New("permission denied reading source database")

	// ErrDatabase: the snapshot copied fine but could not be opened or
	// queried as a SQLite database.
	ErrDatabase = errors.New("source database unreadable")
)
