package contactlist

import (
	"context"
	"errors"
	"fmt"
)

// ErrSourceUnavailable matches any error produced when the contact source
// cannot be queried.
var ErrSourceUnavailable = errors.New("contactlist: source unavailable")

// ErrorCode classifies loader errors.
type ErrorCode string

const (
	// ErrorCodeSourceUnavailable indicates the source query failed.
	ErrorCodeSourceUnavailable ErrorCode = "source_unavailable"
)

// Error is a typed package error for load operations.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "contactlist: <nil>"
	}
	msg := fmt.Sprintf("contactlist: %s", e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying source error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's code.
func (e *Error) Is(target error) bool {
	return e != nil && e.Code == ErrorCodeSourceUnavailable && target == ErrSourceUnavailable
}

// Contact is one canonical address book entry.
//
// PhotoURI and PhotoThumbnailURI are empty when the source has no photo.
type Contact struct {
	ID                string
	DisplayName       string
	PhoneNumber       string
	PhotoURI          string
	PhotoThumbnailURI string
}

// Record is a raw row as returned by a [Source]. Any field may be empty.
// A source that lists one row per phone number yields several records
// sharing the same ID.
type Record struct {
	ID                string
	DisplayName       string
	PhoneNumber       string
	PhotoURI          string
	PhotoThumbnailURI string
}

// QueryOptions are hints passed to [Source.Records].
type QueryOptions struct {
	// SortByDisplayName asks the source to return rows ordered by
	// display name. Sources that cannot sort may ignore it.
	SortByDisplayName bool
}

// Source is the device address book.
type Source interface {
	// Records returns every raw record. A nil slice with a nil error is
	// an empty address book.
	Records(ctx context.Context, opts QueryOptions) ([]Record, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context, opts QueryOptions) ([]Record, error)

// Records calls f.
func (f SourceFunc) Records(ctx context.Context, opts QueryOptions) ([]Record, error) {
	return f(ctx, opts)
}
