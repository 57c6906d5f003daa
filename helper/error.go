package helper

import "fmt"

// Error wraps an error with the operation it occurred in.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("error in %v: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new wrapped error for the given operation.
func NewError(op string, err error) error {
	return &Error{Op: op, Err: err}
}
