package todos

import "errors"

var (
	// ErrNotFound is returned when an operation targets a (userId, todoId)
	// pair that does not exist.
	ErrNotFound = errors.New("todos: item not found")

	// ErrValidation is returned when input fails validation before any
	// storage call is made. Wrapped errors carry the field detail.
	ErrValidation = errors.New("todos: invalid input")

	// ErrBadCursor is returned when a continuation token cannot be decoded.
	ErrBadCursor = errors.New("todos: invalid continuation token")
)
