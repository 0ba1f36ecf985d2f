package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup or removal by id matches no record.
	ErrNotFound = errors.New("record not found")
)
