package db

import "errors"

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("not found")
	// ErrOutOfStock is returned when a costume has no units left to assign
	ErrOutOfStock = errors.New("costume out of stock")
	// ErrConflict is returned when a write collides with an existing document
	ErrConflict = errors.New("conflict")
)
