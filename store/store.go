// Package store owns persistence for users and notes. Each operation is a
// single statement against the database, which serializes concurrent writers
// at the statement level; no multi-statement transactions are used.
package store

import "errors"

var (
	// ErrDuplicateUsername is returned by Users.Create when the username is taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrInvalidCredentials is returned by Users.Authenticate when no user
	// matches the given username and password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// timeLayout is the storage format for timestamps. Fixed-width UTC so that
// lexicographic ORDER BY equals chronological order at nanosecond resolution.
const timeLayout = "2006-01-02 15:04:05.000000000"
