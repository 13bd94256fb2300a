package resume

import "errors"

var (
	// ErrMalformedDocument means the input is not well-formed XML.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrInvalidMargins means a margin value is not a finite number inside [0, MaxMargin].
	ErrInvalidMargins = errors.New("invalid margins")
	// ErrInvalidKey means a display name cannot be turned into a storage key.
	ErrInvalidKey = errors.New("invalid resume name")
)
