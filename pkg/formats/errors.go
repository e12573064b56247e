package formats

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshforge/pkg/binio"
	"github.com/Faultbox/meshforge/pkg/lineio"
)

// Import errors. Every fatal error aborts the read; the output passed to
// the failing reader must be discarded.
var (
	ErrIO                = binio.ErrIO
	ErrTruncatedInput    = binio.ErrTruncatedInput
	ErrParse             = lineio.ErrParse
	ErrUnrecognized      = lineio.ErrUnrecognized
	ErrInvalidHeader     = errors.New("invalid header")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrResourceCreation  = errors.New("resource creation failed")
	ErrPrecondition      = errors.New("precondition violated")
)

// UnsupportedFormatError names a file whose extension has no registered
// importer.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, ErrUnsupportedFormat)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// ResourceCreationError reports a texture the creator refused.
type ResourceCreationError struct {
	Path string
	Err  error
}

func (e *ResourceCreationError) Error() string {
	return fmt.Sprintf("%s: texture creation failed: %v", e.Path, e.Err)
}

func (e *ResourceCreationError) Unwrap() []error {
	return []error{ErrResourceCreation, e.Err}
}
