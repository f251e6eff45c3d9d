package db

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a single record lookup matches nothing.
	ErrNotFound = errors.New("not found")

	// ErrStore matches every *StoreError via errors.Is.
	ErrStore = errors.New("store failure")
)

// StoreError reports that the underlying database could not serve an operation.
// It is distinct from an empty result.
type StoreError struct {
	Op  string // e.g. "list jobs"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
