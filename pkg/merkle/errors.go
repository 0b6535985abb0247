package merkle

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported tree format")
	ErrEmpty             = errors.New("must not be empty")
	ErrSizeMismatch      = errors.New("size mismatch")
	ErrHashMismatch      = errors.New("hash mismatch")
	ErrInvalidIndex      = errors.New("invalid index")
)

// ParseError reports a tree definition that could not be loaded.
// Field names the offending part of the document, e.g. "tree[3]" or "values[0].treeIndex".
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid tree definition at %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(field string, format string, args ...any) *ParseError {
	return &ParseError{Field: field, Err: fmt.Errorf(format, args...)}
}
