package listing

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	MissingDiscriminator ErrorKind = iota + 1
	UnknownDiscriminator
)

func (k ErrorKind) String() string {
	switch k {
	case MissingDiscriminator:
		return "missing_discriminator"
	case UnknownDiscriminator:
		return "unknown_discriminator"
	}
	return "unknown_error"
}

var (
	ErrMissingDiscriminator = errors.New("listing: missing discriminator")
	ErrUnknownDiscriminator = errors.New("listing: unknown discriminator")
	ErrWriteUnsupported     = errors.New("listing: converter does not support writing listings")
	ErrTooLarge             = errors.New("listing: document too large")
)

// DiscriminatorError reports why a document could not be mapped to a variant.
type DiscriminatorError struct {
	Kind  ErrorKind
	Field string
	Value string
}

func (e *DiscriminatorError) Error() string {
	if e.Kind == MissingDiscriminator {
		return fmt.Sprintf("failed to find the json property '%s' which is required to pick the listing type; "+
			"expected one of: %s, e.g. \"%s\": \"residential\"", e.Field, legalValues(), e.Field)
	}
	return fmt.Sprintf("invalid value %q in json property '%s'; only the following listing types are supported: %s",
		e.Value, e.Field, legalValues())
}

func (e *DiscriminatorError) Is(target error) bool {
	switch target {
	case ErrMissingDiscriminator:
		return e.Kind == MissingDiscriminator
	case ErrUnknownDiscriminator:
		return e.Kind == UnknownDiscriminator
	}
	return false
}

// DocumentError reports input that is not a well-formed listing document:
// broken JSON, a non-object where a listing was expected, or a field holding
// the wrong JSON type.
type DocumentError struct {
	Op  string
	Err error
}

func (e *DocumentError) Error() string { return "listing: " + e.Op + ": " + e.Err.Error() }

func (e *DocumentError) Unwrap() error { return e.Err }
