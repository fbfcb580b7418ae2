package database

import "errors"

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a conditional update matched no row,
	// i.e. another writer committed a conflicting transition first.
	ErrConflict = errors.New("conditional update conflict")

	// ErrUnconfigured is returned when a guild has no broadcast channel set.
	ErrUnconfigured = errors.New("guild has no configured channel")
)
