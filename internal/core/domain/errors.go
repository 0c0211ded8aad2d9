package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAcquisitionTimeout = errors.New("acquisition timeout")
	ErrSchemaInvalid      = errors.New("schema invalid")
	ErrHTTP               = errors.New("http error")
	ErrPersistenceCorrupt = errors.New("persistence corrupt")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrSuperseded         = errors.New("superseded by a newer load")
	ErrNotFound           = errors.New("not found")
	ErrEmptyCart          = errors.New("cart is empty")
)

// HTTPStatusError is returned when a remote source answers with a
// non-success status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// Is reports ErrHTTP so callers can match any status failure.
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTP
}

// SchemaError describes why a single record was rejected.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid game record: field=%s, reason=%s", e.Field, e.Reason)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaInvalid
}
