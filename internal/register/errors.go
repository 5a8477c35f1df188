package register

import (
	"errors"
	"fmt"
)

// Sentinels matched by errors.Is against the typed errors below.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("member not found")
	ErrCorruptStore = errors.New("member file is corrupt")
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports a lookup by id that matched nothing.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("member %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// CorruptStoreError reports a member file that exists but cannot be trusted.
// Loading never falls back to an empty register when this is returned.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt member file %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

func (e *CorruptStoreError) Is(target error) bool { return target == ErrCorruptStore }
