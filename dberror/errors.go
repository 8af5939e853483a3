// Package dberror defines the failure taxonomy shared by the storage engine,
// the script log and the statement executor.
//
// Every failure is reachable through errors.Is against one of the sentinels
// below, so callers can decide between rolling back (ErrUniqueViolation) and
// abandoning the operation (everything else) without string matching.
package dberror

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrIO marks any failed open/read/write/backup/restore.
	ErrIO = errors.New("i/o failure")
	// ErrCorrupted marks a record or backup that does not match what was written.
	ErrCorrupted = errors.New("stream corrupted")
	// ErrSizeMismatch marks a row whose serialized length differs from its size.
	ErrSizeMismatch = errors.New("serialized size mismatch")
	// ErrUniqueViolation is the only expected failure: the caller rolls back.
	ErrUniqueViolation = errors.New("violation of unique index")
	// ErrAlreadyInUse marks a script file locked by another holder.
	ErrAlreadyInUse = errors.New("database is already in use")
	// ErrNotFound marks a missing table, index or session.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks a statement or value the executor cannot accept.
	ErrInvalid = errors.New("invalid input")
)

// IO wraps an I/O failure with the operation and path involved.
func IO(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, "failed to %s %s", op, path), ErrIO)
}

// Corrupted reports a corrupted record or file.
func Corrupted(format string, args ...any) error {
	return errors.Wrapf(ErrCorrupted, format, args...)
}

// SizeMismatch reports a row whose serialized form is not size bytes long.
func SizeMismatch(pos int32, size, written int) error {
	return errors.Wrapf(ErrSizeMismatch, "row at %d: size %d, serialized %d", pos, size, written)
}

// UniqueViolation reports a duplicate key in the named index.
func UniqueViolation(index string) error {
	return errors.Wrapf(ErrUniqueViolation, "index %s", index)
}

// AlreadyInUse reports that path is held open by another process.
func AlreadyInUse(path string, cause error) error {
	err := errors.Wrapf(ErrAlreadyInUse, "script %s is locked", path)
	if cause != nil {
		err = errors.WithSecondaryError(err, cause)
	}
	return err
}

// NotFound reports a missing named object.
func NotFound(kind, name string) error {
	return errors.Wrapf(ErrNotFound, "%s %s", kind, name)
}

// Invalid reports input the executor or a table cannot accept.
func Invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalid, format, args...)
}

// IsRecoverable reports whether the caller may continue after rolling back
// the enclosing transaction.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUniqueViolation) || errors.Is(err, ErrInvalid) || errors.Is(err, ErrNotFound)
}
